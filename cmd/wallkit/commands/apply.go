package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wallkit/wallkit/internal/effects"
	"github.com/wallkit/wallkit/internal/wallpaper"
)

var applyCmd = &cobra.Command{
	Use:   "apply <image>",
	Short: "Set a wallpaper",
	Long: `Set the given image as wallpaper on one monitor or all of them.

The image goes through the full pipeline: configured photo effect,
transition, per-monitor state persistence and color generation.`,
	Example: `  # Set on every monitor
  wallkit apply ~/Pictures/Wallpapers/forest.png

  # Set only on the focused monitor
  wallkit apply forest.png --monitor active

  # Set on one specific output
  wallkit apply forest.png --monitor DP-1`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var (
	applyMonitor    string
	applyTransition string
	applyEffect     string
)

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyMonitor, "monitor", "m", wallpaper.TargetAll, "target monitor (connector name, 'active' or 'all')")
	applyCmd.Flags().StringVarP(&applyTransition, "transition", "t", "", "transition type (persisted, e.g. fade, wipe, grow)")
	applyCmd.Flags().StringVarP(&applyEffect, "effect", "e", "", "photo effect (persisted: none, blur, grayscale, sepia)")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := setup()
	if err != nil {
		return err
	}

	if applyTransition != "" {
		if err := cfg.SetTransition(applyTransition); err != nil {
			return fmt.Errorf("failed to set transition: %w", err)
		}
	}
	if applyEffect != "" {
		if !effects.Known(applyEffect) {
			return fmt.Errorf("unknown effect: %s", applyEffect)
		}
		if err := cfg.SetEffect(applyEffect); err != nil {
			return fmt.Errorf("failed to set effect: %w", err)
		}
	}

	image, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(image); err != nil {
		return fmt.Errorf("cannot read image: %w", err)
	}

	if err := mgr.Apply(image, applyMonitor); err != nil {
		return err
	}
	fmt.Printf("Wallpaper set: %s\n", image)
	return nil
}
