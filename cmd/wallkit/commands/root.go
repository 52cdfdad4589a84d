package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wallkit/wallkit/internal/backend"
	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/settings"
	"github.com/wallkit/wallkit/internal/toolexec"
	"github.com/wallkit/wallkit/internal/wallpaper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "wallkit",
		Short: "wallkit - Wallpaper manager for Wayland and X11 desktops",
		Long: `wallkit sets and manages wallpapers across compositors. It detects the
running desktop (Hyprland, Niri, KDE Plasma, Labwc or plain X11), discovers
monitors through that desktop's own tooling, and drives the matching
wallpaper tool with transitions, photo effects and per-monitor state.

Features:
  • Automatic compositor backend detection
  • Per-monitor wallpapers with persistent state
  • swww transitions and photo effects (blur, grayscale, sepia)
  • matugen color generation with GTK/waybar/terminal integrations
  • REST API for bars, widgets and scripts`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/wallkit/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "API server port (default is 8940)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-log", false, "emit raw JSON logs instead of console output")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_log", rootCmd.PersistentFlags().Lookup("json-log"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// setup loads the configuration, configures logging and wires the pipeline.
// Every subcommand that touches the compositor goes through it.
func setup() (*settings.Store, *wallpaper.Manager, error) {
	cfg, err := settings.NewStore(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Get().LogLevel
	if flagLevel := viper.GetString("log_level"); flagLevel != "" {
		level = flagLevel
	}
	logger.Init(level, !viper.GetBool("json_log"))

	run := toolexec.New()
	conf := cfg.Get()
	reg := backend.NewRegistry(run, backend.Options{
		TransitionFPS:      conf.TransitionFPS,
		TransitionDuration: conf.TransitionDuration,
	})
	return cfg, wallpaper.NewManager(cfg, reg, run), nil
}
