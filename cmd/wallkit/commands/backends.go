package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show compositor backend detection",
	Long: `Probe every known compositor backend in preference order and show
which one wallkit would use on this desktop.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	_, mgr, err := setup()
	if err != nil {
		return err
	}

	reg := mgr.Registry()
	active, detectErr := reg.Active()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tACTIVE")
	fmt.Fprintln(w, "-------\t------")
	for _, name := range reg.Names() {
		mark := ""
		if active != nil && name == active.Name() {
			mark = "Yes"
		}
		fmt.Fprintf(w, "%s\t%s\n", name, mark)
	}
	w.Flush()

	if detectErr != nil {
		return detectErr
	}
	return nil
}
