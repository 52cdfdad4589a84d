package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cycleMonitor string

	nextCmd = &cobra.Command{
		Use:   "next",
		Short: "Switch to the next wallpaper in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(func(mgr cycler, target string) (string, error) {
				return mgr.Next(target)
			})
		},
	}

	prevCmd = &cobra.Command{
		Use:   "prev",
		Short: "Switch to the previous wallpaper in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(func(mgr cycler, target string) (string, error) {
				return mgr.Prev(target)
			})
		},
	}

	randomCmd = &cobra.Command{
		Use:   "random",
		Short: "Switch to a random wallpaper from the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(func(mgr cycler, target string) (string, error) {
				return mgr.Random(target)
			})
		},
	}
)

type cycler interface {
	Next(target string) (string, error)
	Prev(target string) (string, error)
	Random(target string) (string, error)
}

func init() {
	for _, cmd := range []*cobra.Command{nextCmd, prevCmd, randomCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringVarP(&cycleMonitor, "monitor", "m", "", "target monitor (connector name, 'active' or 'all'; default follows keybind_mode)")
	}
}

func runCycle(step func(cycler, string) (string, error)) error {
	cfg, mgr, err := setup()
	if err != nil {
		return err
	}

	target := cycleMonitor
	if target == "" {
		target = cfg.KeybindMode()
	}

	image, err := step(mgr, target)
	if err != nil {
		return err
	}
	fmt.Printf("Wallpaper set: %s\n", image)
	return nil
}
