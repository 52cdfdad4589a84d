// Package settings centralizes everything wallkit persists outside the
// monitor state document: the main YAML config file and the small cache
// marker files (transition, effect, scaling, keybind mode, matugen flags).
// No other component reads these files directly.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wallkit/wallkit/internal/logger"
	"gopkg.in/yaml.v3"
)

// Documented defaults for every setting.
const (
	DefaultTransition    = "fade"
	DefaultEffect        = "none"
	DefaultScaling       = "crop"
	DefaultKeybindMode   = "all"
	DefaultMatugenScheme = "scheme-expressive"

	DefaultTransitionFPS      = 60
	DefaultTransitionDuration = 0.8

	DefaultServerPort = 8940
)

// Cache marker file names under the cache root.
const (
	transitionFile     = "transition_effect"
	effectFile         = "current_effect"
	scalingFile        = "wallpaper_scaling"
	keybindModeFile    = "keybind_mode"
	matugenEnabledFile = "matugen_enabled"
	matugenSchemeFile  = "matugen_scheme"
)

// legacySchemeNames maps pre-2.x matugen scheme names to their current form.
var legacySchemeNames = map[string]string{
	"content":     "scheme-content",
	"expressive":  "scheme-expressive",
	"fidelity":    "scheme-fidelity",
	"fruit-salad": "scheme-fruit-salad",
	"monochrome":  "scheme-monochrome",
	"neutral":     "scheme-neutral",
	"rainbow":     "scheme-rainbow",
	"tonal-spot":  "scheme-tonal-spot",
}

// Config is the YAML-backed portion of the configuration.
type Config struct {
	WallpaperDir       string  `yaml:"wallpaper_dir"`
	CacheDir           string  `yaml:"cache_dir"`
	CurrentLink        string  `yaml:"current_wallpaper_link"`
	TransitionFPS      int     `yaml:"transition_fps"`
	TransitionDuration float64 `yaml:"transition_duration"`
	ServerPort         int     `yaml:"server_port"`
	LogLevel           string  `yaml:"log_level"`
}

// Store handles configuration and cache marker files.
type Store struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewStore loads (or creates with defaults) the config file and ensures the
// cache root exists. An empty configFile selects the default path.
func NewStore(configFile string) (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "wallkit")
	path := filepath.Join(configDir, "config.yaml")
	if configFile != "" {
		path = configFile
		configDir = filepath.Dir(configFile)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	s := &Store{configPath: path}
	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("settings").Info().
			Str("path", path).
			Msg("Config file not found, creating new config")
		s.config = defaults(homeDir)
		if err := s.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}
	s.applyFallbacks(homeDir)

	if err := os.MkdirAll(s.config.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return s, nil
}

func defaults(homeDir string) *Config {
	return &Config{
		WallpaperDir:       filepath.Join(homeDir, "Pictures", "Wallpapers"),
		CacheDir:           filepath.Join(homeDir, ".cache", "wallkit"),
		CurrentLink:        filepath.Join(homeDir, ".current-wallpaper"),
		TransitionFPS:      DefaultTransitionFPS,
		TransitionDuration: DefaultTransitionDuration,
		ServerPort:         DefaultServerPort,
		LogLevel:           "info",
	}
}

// applyFallbacks fills zero-valued fields from the defaults so a partial
// hand-edited config file still works.
func (s *Store) applyFallbacks(homeDir string) {
	def := defaults(homeDir)
	if s.config.WallpaperDir == "" {
		s.config.WallpaperDir = def.WallpaperDir
	}
	if s.config.CacheDir == "" {
		s.config.CacheDir = def.CacheDir
	}
	if s.config.CurrentLink == "" {
		s.config.CurrentLink = def.CurrentLink
	}
	if s.config.TransitionFPS <= 0 {
		s.config.TransitionFPS = def.TransitionFPS
	}
	if s.config.TransitionDuration <= 0 {
		s.config.TransitionDuration = def.TransitionDuration
	}
	if s.config.ServerPort <= 0 {
		s.config.ServerPort = def.ServerPort
	}
	if s.config.LogLevel == "" {
		s.config.LogLevel = def.LogLevel
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	s.config = &cfg
	return nil
}

// Save writes the YAML config to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := yaml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(s.configPath, data, 0o644)
}

// Get returns a copy of the YAML config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// ConfigPath returns the config file location.
func (s *Store) ConfigPath() string { return s.configPath }

// CacheDir returns the cache root every marker file lives under.
func (s *Store) CacheDir() string { return s.Get().CacheDir }

// WallpaperDir returns the wallpaper library directory.
func (s *Store) WallpaperDir() string { return s.Get().WallpaperDir }

// CurrentLink returns the global current-wallpaper pointer path.
func (s *Store) CurrentLink() string { return s.Get().CurrentLink }

// SetServerPort overrides the API port for this process and persists it.
func (s *Store) SetServerPort(port int) error {
	s.mu.Lock()
	s.config.ServerPort = port
	s.mu.Unlock()
	return s.Save()
}

// readMarker reads a cache marker file, returning def when the file is
// absent or unreadable. The legacy "prefix|value" format reads the second
// field.
func (s *Store) readMarker(name, def string) string {
	data, err := os.ReadFile(filepath.Join(s.CacheDir(), name))
	if err != nil {
		return def
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return def
	}
	if _, rest, ok := strings.Cut(content, "|"); ok {
		return rest
	}
	return content
}

func (s *Store) writeMarker(name, value string) error {
	dir := s.CacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644)
}

// Transition returns the configured transition type.
func (s *Store) Transition() string {
	return s.readMarker(transitionFile, DefaultTransition)
}

// SetTransition persists the transition type.
func (s *Store) SetTransition(v string) error {
	return s.writeMarker(transitionFile, v)
}

// Effect returns the last applied photo effect.
func (s *Store) Effect() string {
	return s.readMarker(effectFile, DefaultEffect)
}

// SetEffect persists the applied photo effect.
func (s *Store) SetEffect(v string) error {
	return s.writeMarker(effectFile, v)
}

// Scaling returns the wallpaper resize mode.
func (s *Store) Scaling() string {
	return s.readMarker(scalingFile, DefaultScaling)
}

// SetScaling persists the wallpaper resize mode.
func (s *Store) SetScaling(v string) error {
	return s.writeMarker(scalingFile, v)
}

// KeybindMode returns "all" or "active": which monitors a hotkey-triggered
// change targets.
func (s *Store) KeybindMode() string {
	return s.readMarker(keybindModeFile, DefaultKeybindMode)
}

// SetKeybindMode persists the keybind target mode.
func (s *Store) SetKeybindMode(v string) error {
	return s.writeMarker(keybindModeFile, v)
}

// MatugenEnabled reports whether color generation runs after an apply.
func (s *Store) MatugenEnabled() bool {
	return strings.EqualFold(s.readMarker(matugenEnabledFile, "true"), "true")
}

// SetMatugenEnabled persists the color generation flag.
func (s *Store) SetMatugenEnabled(v bool) error {
	return s.writeMarker(matugenEnabledFile, fmt.Sprintf("%t", v))
}

// MatugenScheme returns the color scheme, migrating legacy names.
func (s *Store) MatugenScheme() string {
	scheme := s.readMarker(matugenSchemeFile, DefaultMatugenScheme)
	if mapped, ok := legacySchemeNames[scheme]; ok {
		return mapped
	}
	return scheme
}

// SetMatugenScheme persists the color scheme.
func (s *Store) SetMatugenScheme(v string) error {
	return s.writeMarker(matugenSchemeFile, v)
}
