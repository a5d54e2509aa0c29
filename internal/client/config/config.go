// Package config holds blockctl settings. Values come from global command-line
// flags, each of which may also be set through a BLOCKCTL_* environment
// variable.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
)

// Config holds runtime settings for the blockctl client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the BlockKeeper gRPC endpoint.
//   - TokenFile: where the identity token from the last login is kept.
//   - Timeout: per-command deadline.
type Config struct {
	ServerEndpointAddr string
	TokenFile          string
	Timeout            time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.TokenFile = DefaultTokenFile()
	c.Timeout = 10 * time.Second
}

// DefaultTokenFile is ~/.blockctl/token, or .blockctl/token when the home
// directory is unknown.
func DefaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".blockctl", "token")
	}
	return filepath.Join(home, ".blockctl", "token")
}

// Flags returns the global flags that populate a Config.
func Flags() []cli.Flag {
	var d Config
	d.LoadDefaults()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "address and port of the BlockKeeper server",
			EnvVars: []string{"BLOCKCTL_ADDR"},
			Value:   d.ServerEndpointAddr,
		},
		&cli.StringFlag{
			Name:    "token-file",
			Usage:   "file holding the identity token",
			EnvVars: []string{"BLOCKCTL_TOKEN_FILE"},
			Value:   d.TokenFile,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "deadline for a single command",
			EnvVars: []string{"BLOCKCTL_TIMEOUT"},
			Value:   d.Timeout,
		},
	}
}

// FromContext builds a Config from parsed global flags.
func FromContext(c *cli.Context) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := c.String("addr"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := c.String("token-file"); v != "" {
		cfg.TokenFile = v
	}
	if v := c.Duration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	return cfg
}
