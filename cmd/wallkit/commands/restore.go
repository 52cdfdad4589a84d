package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-apply the persisted wallpapers",
	Long: `Re-apply the last wallpaper of every known monitor from the state file.

Intended to run once at session startup, after the compositor and the
wallpaper daemon are up. With no state file the global current-wallpaper
link is used instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, mgr, err := setup()
		if err != nil {
			return err
		}
		if err := mgr.Restore(); err != nil {
			return err
		}
		fmt.Println("Wallpapers restored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
