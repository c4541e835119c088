package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the main configuration for nameforge.
type Config struct {
	HostID     string           `toml:"host_id" env:"NAMEFORGE_HOST_ID"`
	BaseDir    string           `toml:"base_dir" env:"NAMEFORGE_BASE_DIR"`
	LogDir     string           `toml:"log_dir" env:"NAMEFORGE_LOG_DIR"`
	Processing ProcessingConfig `toml:"processing"`
	Provider   ProviderConfig   `toml:"provider"`
	History    HistoryConfig    `toml:"history"`
	Archive    ArchiveConfig    `toml:"archive"`
	Encryption EncryptionConfig `toml:"encryption"`
	Server     ServerConfig     `toml:"server"`
}

// ProcessingConfig holds the naming knobs for the suggestion pipeline and
// the transaction engine.
type ProcessingConfig struct {
	CaseStyle         string `toml:"case_style" env:"NAMEFORGE_CASE_STYLE"`
	PreserveExtension bool   `toml:"preserve_extension"`
	MaxConcurrency    int    `toml:"max_concurrency" env:"NAMEFORGE_MAX_CONCURRENCY"`
	NeighborCount     int    `toml:"neighbor_count"`
	FolderDepth       int    `toml:"folder_depth"`
	IncludeDatePrefix bool   `toml:"include_date_prefix"`
	DateFormat        string `toml:"date_format"`
	TagCount          int    `toml:"tag_count"`
	ApplyTags         bool   `toml:"apply_tags"`
	TagMode           string `toml:"tag_mode"` // "append" or "replace"
}

// ProviderConfig selects and configures the naming-suggestion backend.
// This uses a tagged union pattern: the Type field determines which other
// fields are relevant.
type ProviderConfig struct {
	Type           string `toml:"type"` // "static", "ollama", "openai", or "lmstudio"
	BaseURL        string `toml:"base_url,omitempty"`
	Model          string `toml:"model,omitempty"`
	APIKey         string `toml:"api_key,omitempty" env:"NAMEFORGE_API_KEY"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// HistoryConfig configures the batch history store.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
	Keep    int    `toml:"keep"`               // batches retained; 0 keeps all
}

// ArchiveConfig configures the history snapshot archive backend.
type ArchiveConfig struct {
	Type string `toml:"type"` // "none", "memory", "filesystem", or "s3"

	// Filesystem-specific (Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific (Type == "s3"). When the static key pair is empty the
	// SDK's default credential chain is used.
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty" env:"NAMEFORGE_S3_REGION"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty" env:"NAMEFORGE_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty" env:"NAMEFORGE_S3_SECRET_ACCESS_KEY"`
}

// EncryptionConfig holds paths to the age key pair used for snapshot
// encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default) or "age"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// ServerConfig configures the HTTP API exposed by `nameforge serve`.
type ServerConfig struct {
	Addr string `toml:"addr" env:"NAMEFORGE_ADDR"`
}

// NewConfig creates a Config with the provided identity and sensible
// defaults rooted under baseDir.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Processing: ProcessingConfig{
			CaseStyle:         "kebab",
			PreserveExtension: true,
			MaxConcurrency:    3,
			NeighborCount:     10,
			FolderDepth:       2,
			DateFormat:        "2006-01-02",
			TagCount:          5,
			TagMode:           "append",
		},
		Provider: ProviderConfig{
			Type:           "static",
			TimeoutSeconds: 60,
		},
		History: HistoryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
			Keep:    100,
		},
		Archive:    ArchiveConfig{Type: "none"},
		Encryption: EncryptionConfig{Type: "none"},
		Server:     ServerConfig{Addr: "127.0.0.1:8765"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path and applies
// environment overrides on top of the file's values.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	return cfg, nil
}

// WriteToFile writes a Config to the specified file path, creating parent
// directories as needed.
func WriteToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
// Fails if a config file already exists there.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := WriteToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
