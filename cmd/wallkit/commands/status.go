package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active backend and current wallpapers",
	RunE:  runStatus,
}

var statusFormat string

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "output format (text or json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := setup()
	if err != nil {
		return err
	}

	b, err := mgr.Registry().Active()
	if err != nil {
		return err
	}

	wallpapers := make(map[string]string)
	for _, c := range mgr.States().Connectors() {
		wallpapers[c] = mgr.States().Get(c)
	}

	if statusFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"backend":        b.Name(),
			"active_monitor": b.ActiveMonitor(),
			"transition":     cfg.Transition(),
			"effect":         cfg.Effect(),
			"scaling":        cfg.Scaling(),
			"wallpapers":     wallpapers,
		})
	}

	fmt.Printf("Backend:        %s\n", b.Name())
	fmt.Printf("Active monitor: %s\n", b.ActiveMonitor())
	fmt.Printf("Transition:     %s\n", cfg.Transition())
	fmt.Printf("Effect:         %s\n", cfg.Effect())
	fmt.Printf("Scaling:        %s\n", cfg.Scaling())
	if len(wallpapers) == 0 {
		fmt.Println("No wallpapers recorded yet")
		return nil
	}
	fmt.Println("Wallpapers:")
	for connector, image := range wallpapers {
		fmt.Printf("  %-12s %s\n", connector, image)
	}
	return nil
}
