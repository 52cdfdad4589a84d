package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wallkit/wallkit/internal/api"
	"github.com/wallkit/wallkit/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wallkit HTTP API server",
	Long: `Start the local REST API so bars, widgets and scripts can query
monitors and drive wallpaper changes over HTTP.`,
	Example: `  # Start on the configured port (default 8940)
  wallkit serve

  # Start on a custom port
  wallkit serve --port 9090

  # Start with debug logging
  wallkit serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := setup()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	// Override port from flag if provided
	if port := viper.GetInt("server_port"); port > 0 {
		if err := cfg.SetServerPort(port); err != nil {
			return fmt.Errorf("failed to set server port: %w", err)
		}
	}
	port := cfg.Get().ServerPort

	if _, err := mgr.Registry().Active(); err != nil {
		log.Warn().Err(err).Msg("No backend detected yet, serving anyway")
	}

	server := api.NewServer(mgr, cfg)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info().Int("port", port).Msg("wallkit API is running")
	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
		log.Info().Msg("Shutting down")
		return nil
	}
}
