package ticket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	TicketDir string `json:"ticket_dir"`
	Editor    string `json:"editor,omitempty"`
	Assignee  string `json:"assignee,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	TicketDirAbs string `json:"-"` // Absolute path to ticket directory

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".tk.json"

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride   string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath        string            // -c/--config flag value
	TicketDirOverride string            // --ticket-dir flag value; empty means no override
	Env               map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/tk/config.json or $XDG_CONFIG_HOME/tk/config.json)
// 3. Project config file (.tk.json), or the explicit file from ConfigPath
// 4. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Config{TicketDir: ".tickets"}

	if globalPath := globalConfigPath(input.Env); globalPath != "" {
		loaded, err := applyConfigFile(&cfg, globalPath)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
		}
	}

	projectPath := filepath.Join(workDir, ConfigFileName)
	explicit := input.ConfigPath != ""

	if explicit {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	loaded, err := applyConfigFile(&cfg, projectPath)
	if err != nil {
		return Config{}, err
	}

	if explicit && !loaded {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.TicketDirOverride != "" {
		cfg.TicketDir = input.TicketDirOverride
	}

	cfg.EffectiveCwd = workDir

	cfg.TicketDirAbs = cfg.TicketDir
	if !filepath.IsAbs(cfg.TicketDirAbs) {
		cfg.TicketDirAbs = filepath.Join(workDir, cfg.TicketDir)
	}

	return cfg, nil
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tk/config.json if set, otherwise ~/.config/tk/config.json.
// Returns empty string if home directory cannot be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "tk", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tk", "config.json")
	}

	return ""
}

// applyConfigFile overlays the settings from a JSONC file onto cfg.
// Missing files are skipped, reported as not loaded. The TicketDir
// pointer distinguishes an absent key from one explicitly set to "",
// which is rejected here where the offending file is known.
func applyConfigFile(cfg *Config, path string) (bool, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: invalid JSONC: %w", ErrConfigInvalid, path, err)
	}

	var overlay struct {
		TicketDir *string `json:"ticket_dir"`
		Editor    string  `json:"editor"`
		Assignee  string  `json:"assignee"`
	}

	unmarshalErr := json.Unmarshal(standardized, &overlay)
	if unmarshalErr != nil {
		return false, fmt.Errorf("%w %s: invalid JSON: %w", ErrConfigInvalid, path, unmarshalErr)
	}

	if overlay.TicketDir != nil {
		if *overlay.TicketDir == "" {
			return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrTicketDirEmpty)
		}

		cfg.TicketDir = *overlay.TicketDir
	}

	if overlay.Editor != "" {
		cfg.Editor = overlay.Editor
	}

	if overlay.Assignee != "" {
		cfg.Assignee = overlay.Assignee
	}

	return true, nil
}
