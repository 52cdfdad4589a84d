package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/wallkit/wallkit/internal/logger"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Change wallpaper periodically",
	Long: `Run in the foreground and switch to a random wallpaper from the
library at a fixed interval.`,
	Example: `  # New wallpaper every 30 minutes on every monitor
  wallkit rotate --interval 30m

  # Every 5 minutes on the focused monitor only
  wallkit rotate --interval 5m --monitor active`,
	RunE: runRotate,
}

var (
	rotateInterval time.Duration
	rotateMonitor  string
)

func init() {
	rootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().DurationVarP(&rotateInterval, "interval", "i", 30*time.Minute, "time between wallpaper changes")
	rotateCmd.Flags().StringVarP(&rotateMonitor, "monitor", "m", "", "target monitor (connector name, 'active' or 'all'; default follows keybind_mode)")
}

func runRotate(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := setup()
	if err != nil {
		return err
	}
	if rotateInterval < time.Minute {
		return fmt.Errorf("interval must be at least 1m")
	}

	target := rotateMonitor
	if target == "" {
		target = cfg.KeybindMode()
	}

	log := logger.WithComponent("rotate")
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(rotateInterval),
		gocron.NewTask(func() {
			if image, err := mgr.Random(target); err != nil {
				log.Warn().Err(err).Msg("Scheduled wallpaper change failed")
			} else {
				log.Info().Str("image", image).Msg("Scheduled wallpaper change")
			}
		}),
		gocron.WithName("wallpaper-rotation"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule rotation: %w", err)
	}

	scheduler.Start()
	log.Info().Dur("interval", rotateInterval).Str("target", target).Msg("Wallpaper rotation started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Stopping wallpaper rotation")
	return scheduler.Shutdown()
}
