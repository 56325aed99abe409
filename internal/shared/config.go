package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Secrets can be overridden with MUSE_-prefixed environment variables,
// see [Config.ApplyEnv].
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	GitHub   GitHubConfig   `toml:"github"`
	Music    MusicConfig    `toml:"music"`
	CORS     CORSConfig     `toml:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN      string `toml:"dsn"`
	MaxConns int    `toml:"max_conns"`
	Migrate  bool   `toml:"migrate_on_start"`
}

// AuthConfig contains token signing and lifetime settings.
type AuthConfig struct {
	SecretKey         string `toml:"secret_key"`
	AccessTTLSeconds  int    `toml:"access_token_expire_seconds"`
	RefreshTTLDays    int    `toml:"refresh_token_expire_days"`
	RefreshTokenLimit int    `toml:"refresh_token_limit"`
}

// AccessTTL returns the access token lifetime.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLSeconds) * time.Second
}

// RefreshTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLDays) * 24 * time.Hour
}

// GitHubConfig contains GitHub OAuth application credentials.
type GitHubConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// MusicConfig contains upstream music catalog API settings.
type MusicConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// CORSConfig contains cross-origin settings for the browser frontend.
type CORSConfig struct {
	AllowOrigins []string `toml:"allow_origins"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// ApplyEnv overlays MUSE_-prefixed environment variables onto the config.
//
// Only credentials and connection strings are sourced from the environment;
// structural settings stay in the TOML file.
func (c *Config) ApplyEnv() {
	overrides := map[string]*string{
		"MUSE_DATABASE_DSN":         &c.Database.DSN,
		"MUSE_SECRET_KEY":           &c.Auth.SecretKey,
		"MUSE_GITHUB_CLIENT_ID":     &c.GitHub.ClientID,
		"MUSE_GITHUB_CLIENT_SECRET": &c.GitHub.ClientSecret,
		"MUSE_MUSIC_TOKEN":          &c.Music.Token,
	}

	for key, target := range overrides {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
