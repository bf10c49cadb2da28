package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Actor     string `yaml:"actor,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pawstay", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("PAWSTAY_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getActor returns the staff name sent with each request, from env var or
// config. Empty lets the server apply its default.
func getActor() string {
	if v := os.Getenv("PAWSTAY_ACTOR"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.Actor
	}
	return ""
}

func newConfigCmd() *cobra.Command {
	var server, actor string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update CLI settings",
		Long:  "Show the saved server URL and staff name, or update them with --server and --actor.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = strings.TrimRight(strings.TrimSpace(server), "/")
				changed = true
			}
			if cmd.Flags().Changed("actor") {
				cfg.Actor = strings.TrimSpace(actor)
				changed = true
			}
			if changed {
				if err := saveConfig(cfg); err != nil {
					return err
				}
			}

			if isJSON() {
				return printJSON(out(cmd), cfg)
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Config:  %s\n", path)
			fmt.Fprintf(out(cmd), "Server:  %s\n", valueOr(cfg.ServerURL, defaultServerURL+" (default)"))
			fmt.Fprintf(out(cmd), "Actor:   %s\n", valueOr(cfg.Actor, "staff (server default)"))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "pawstay server URL")
	cmd.Flags().StringVar(&actor, "actor", "", "staff name recorded on decisions and logs")

	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
