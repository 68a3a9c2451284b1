package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, state file, and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	VideosDir string `toml:"videos_dir"`
	LogDir    string `toml:"log_dir"`
	StateFile string `toml:"state_file"`
	APIBind   string `toml:"api_bind"`
}

// Sheets contains configuration for the product spreadsheet source.
type Sheets struct {
	SpreadsheetID  string `toml:"spreadsheet_id"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Secrets contains configuration for credential retrieval.
type Secrets struct {
	// Provider selects the backing store: "gcp" or "env".
	Provider     string `toml:"provider"`
	GCPProjectID string `toml:"gcp_project_id"`
	BaseURL      string `toml:"base_url"`
}

// Script contains configuration for marketing-script generation.
type Script struct {
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Video contains configuration for avatar video generation.
type Video struct {
	BaseURL             string `toml:"base_url"`
	AvatarID            string `toml:"avatar_id"`
	VoiceID             string `toml:"voice_id"`
	BackgroundColor     string `toml:"background_color"`
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxWaitSeconds      int    `toml:"max_wait_seconds"`
}

// YouTube contains the bytes-upload publisher settings.
type YouTube struct {
	Enabled       bool   `toml:"enabled"`
	UploadBaseURL string `toml:"upload_base_url"`
	CategoryID    string `toml:"category_id"`
	PrivacyStatus string `toml:"privacy_status"`
}

// Instagram contains the container/publish publisher settings.
type Instagram struct {
	Enabled                  bool   `toml:"enabled"`
	BaseURL                  string `toml:"base_url"`
	ProcessingPollSeconds    int    `toml:"processing_poll_seconds"`
	ProcessingMaxWaitSeconds int    `toml:"processing_max_wait_seconds"`
}

// Pinterest contains the pin-by-URL publisher settings.
type Pinterest struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Twitter contains the media-upload publisher settings.
type Twitter struct {
	Enabled                  bool   `toml:"enabled"`
	UploadBaseURL            string `toml:"upload_base_url"`
	APIBaseURL               string `toml:"api_base_url"`
	ProcessingPollSeconds    int    `toml:"processing_poll_seconds"`
	ProcessingMaxWaitSeconds int    `toml:"processing_max_wait_seconds"`
}

// Publish groups the per-platform publisher settings.
type Publish struct {
	YouTube   YouTube   `toml:"youtube"`
	Instagram Instagram `toml:"instagram"`
	Pinterest Pinterest `toml:"pinterest"`
	Twitter   Twitter   `toml:"twitter"`
}

// Ads contains settings for Amazon Advertising campaign reports.
type Ads struct {
	BaseURL             string `toml:"base_url"`
	ReportType          string `toml:"report_type"`
	DaysBack            int    `toml:"days_back"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxWaitSeconds      int    `toml:"max_wait_seconds"`
}

// Run contains executor settings.
type Run struct {
	ProductsPerRun int `toml:"products_per_run"`
	DelaySeconds   int `toml:"delay_seconds"`
}

// Schedule contains standing-scheduler settings.
type Schedule struct {
	// Type is one of daily, hourly, every_n_hours, custom.
	Type          string   `toml:"type"`
	Time          string   `toml:"time"`
	IntervalHours int      `toml:"interval_hours"`
	Times         []string `toml:"times"`
	RunOnStart    bool     `toml:"run_on_start"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelforge.
//
// Sections by subsystem:
//   - Paths: data/video/log directories, cursor state file, API bind
//   - Sheets: product spreadsheet source
//   - Secrets: credential store selection
//   - Script / Video: generation vendor settings
//   - Publish: per-platform publisher settings
//   - Ads: advertising campaign report settings
//   - Run: products per run and inter-product delay
//   - Schedule: standing scheduler cadence
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sheets   Sheets   `toml:"sheets"`
	Secrets  Secrets  `toml:"secrets"`
	Script   Script   `toml:"script"`
	Video    Video    `toml:"video"`
	Publish  Publish  `toml:"publish"`
	Ads      Ads      `toml:"ads"`
	Run      Run      `toml:"run"`
	Schedule Schedule `toml:"schedule"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadFile parses and validates the TOML file at path, failing when it does
// not exist. Used for config_path job submissions.
func LoadFile(path string) (*Config, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}
	cfg, _, _, err := Load(expanded)
	return cfg, err
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.VideosDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.StateFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
