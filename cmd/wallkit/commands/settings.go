package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wallkit/wallkit/internal/effects"
	"github.com/wallkit/wallkit/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change wallkit settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  wallkit settings set transition wipe
  wallkit settings set effect blur
  wallkit settings set scaling fit
  wallkit settings set keybind-mode active
  wallkit settings set matugen-enabled false
  wallkit settings set matugen-scheme scheme-tonal-spot`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func settingReaders(cfg *settings.Store) map[string]func() string {
	return map[string]func() string{
		"transition":      cfg.Transition,
		"effect":          cfg.Effect,
		"scaling":         cfg.Scaling,
		"keybind-mode":    cfg.KeybindMode,
		"matugen-enabled": func() string { return strconv.FormatBool(cfg.MatugenEnabled()) },
		"matugen-scheme":  cfg.MatugenScheme,
	}
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	cfg, err := settings.NewStore(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	readers := settingReaders(cfg)

	if len(args) == 1 {
		read, ok := readers[args[0]]
		if !ok {
			return fmt.Errorf("unknown setting: %s", args[0])
		}
		fmt.Println(read())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, key := range []string{"transition", "effect", "scaling", "keybind-mode", "matugen-enabled", "matugen-scheme"} {
		fmt.Fprintf(w, "%s\t%s\n", key, readers[key]())
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	cfg, err := settings.NewStore(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	key, value := args[0], args[1]

	switch key {
	case "transition":
		return cfg.SetTransition(value)
	case "effect":
		if !effects.Known(value) {
			return fmt.Errorf("unknown effect: %s (available: none, %s)",
				value, strings.Join(effects.Names(), ", "))
		}
		return cfg.SetEffect(value)
	case "scaling":
		switch value {
		case "crop", "fit", "stretch", "center", "tile":
			return cfg.SetScaling(value)
		}
		return fmt.Errorf("unknown scaling mode: %s (use crop, fit, stretch, center or tile)", value)
	case "keybind-mode":
		if value != "all" && value != "active" {
			return fmt.Errorf("keybind-mode must be 'all' or 'active'")
		}
		return cfg.SetKeybindMode(value)
	case "matugen-enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("matugen-enabled must be true or false")
		}
		return cfg.SetMatugenEnabled(enabled)
	case "matugen-scheme":
		return cfg.SetMatugenScheme(value)
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
}
