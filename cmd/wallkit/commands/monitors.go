package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wallkit/wallkit/internal/monitor"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors seen by the active backend",
	Long: `List the monitors the detected compositor backend reports, with
resolution, scale, refresh rate and which one is focused.`,
	Example: `  # List monitors in table format (default)
  wallkit monitors

  # List monitors in JSON format
  wallkit monitors --format json`,
	RunE: runMonitors,
}

var monitorsFormat string

func init() {
	rootCmd.AddCommand(monitorsCmd)
	monitorsCmd.Flags().StringVarP(&monitorsFormat, "format", "f", "table", "output format (table or json)")
}

func runMonitors(cmd *cobra.Command, args []string) error {
	_, mgr, err := setup()
	if err != nil {
		return err
	}

	b, err := mgr.Registry().Active()
	if err != nil {
		return err
	}
	monitors := b.Monitors()

	switch monitorsFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(monitors)
	case "table":
		return printMonitorsTable(monitors, b.ActiveMonitor())
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", monitorsFormat)
	}
}

func printMonitorsTable(monitors []monitor.Monitor, active string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "CONNECTOR\tNAME\tRESOLUTION\tSCALE\tREFRESH\tACTIVE")
	fmt.Fprintln(w, "---------\t----\t----------\t-----\t-------\t------")

	for _, m := range monitors {
		focused := ""
		if m.Connector == active {
			focused = "Yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.1f\t%s\n",
			m.Connector, m.Name, m.Resolution.String(), m.Scale, m.Refresh, focused)
	}
	return nil
}
