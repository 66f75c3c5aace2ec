package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Toolchain     ToolchainConfig     `toml:"toolchain"`
	Notifications NotificationsConfig `toml:"notifications"`
	Watch         WatchConfig         `toml:"watch"`
}

// GeneralConfig holds directory layout and naming settings
type GeneralConfig struct {
	// BaseDir is the directory containing the flagship script. Empty means
	// the current working directory at startup.
	BaseDir string `toml:"base_dir"`
	// ToolsSubdir is the name of the auxiliary-script directory under BaseDir.
	ToolsSubdir string `toml:"tools_subdir"`
	// ScratchDir holds per-script compiler intermediates, wiped each run.
	ScratchDir string `toml:"scratch_dir"`
	// DistDir is where the compiler first deposits finished executables.
	DistDir string `toml:"dist_dir"`
	// Flagship is the base name routed to BaseDir instead of ToolsSubdir.
	Flagship string `toml:"flagship"`
	// LauncherScript is the legacy entry script excluded from discovery.
	LauncherScript string `toml:"launcher_script"`
	// HistoryDB is the SQLite database recording past runs.
	HistoryDB string `toml:"history_db"`
}

// ToolchainConfig holds external interpreter and compiler settings
type ToolchainConfig struct {
	// Interpreter is the Python executable to probe and build with.
	Interpreter string `toml:"interpreter"`
	// InterpreterFallbacks are tried in order when Interpreter is not found.
	InterpreterFallbacks []string `toml:"interpreter_fallbacks"`
	// CompilerModule is the packager module invoked as `interpreter -m <module>`.
	CompilerModule string `toml:"compiler_module"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// WatchConfig holds watch-mode settings
type WatchConfig struct {
	DebounceMs int    `toml:"debounce_ms"`
	Schedule   string `toml:"schedule"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			BaseDir:        "",
			ToolsSubdir:    "scripts",
			ScratchDir:     "build",
			DistDir:        "dist",
			Flagship:       "FileOrganizer4.0k",
			LauncherScript: "compile_all.py",
			HistoryDB:      filepath.Join(home, ".forge", "history.db"),
		},
		Toolchain: ToolchainConfig{
			Interpreter:          "python",
			InterpreterFallbacks: []string{"python3"},
			CompilerModule:       "PyInstaller",
		},
		Notifications: NotificationsConfig{
			Desktop: false,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Expand paths
	cfg.General.BaseDir = ExpandPath(cfg.General.BaseDir)
	cfg.General.HistoryDB = ExpandPath(cfg.General.HistoryDB)

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "forge", "config.toml")
}

// ResolveBaseDir returns the configured base directory as an absolute path,
// defaulting to the current working directory.
func (c *Config) ResolveBaseDir() (string, error) {
	if c.General.BaseDir != "" {
		return filepath.Abs(c.General.BaseDir)
	}
	return os.Getwd()
}

// Layout resolves the directory layout for a run rooted at baseDir.
// ScratchDir and DistDir are taken relative to baseDir unless absolute.
// All returned paths are absolute: builds change the working directory
// while the compiler runs, so relative paths would resolve against the
// wrong directory.
func (c *Config) Layout(baseDir string) Layout {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	scratch := c.General.ScratchDir
	if !filepath.IsAbs(scratch) {
		scratch = filepath.Join(baseDir, scratch)
	}
	dist := c.General.DistDir
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(baseDir, dist)
	}
	return Layout{
		BaseDir:    baseDir,
		ToolsDir:   filepath.Join(baseDir, c.General.ToolsSubdir),
		ScratchDir: scratch,
		DistDir:    dist,
	}
}

// Layout is the resolved directory layout of a single run
type Layout struct {
	BaseDir    string
	ToolsDir   string
	ScratchDir string
	DistDir    string
}
