package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	gssh "github.com/3cpo-dev/hostseed/internal/ssh"
	"gopkg.in/yaml.v3"
)

// Fabricated host keys registered for the local reverse tunnel in tests.
const (
	DefaultReversePort   = "56789"
	DefaultECDSAPubKey   = "ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTYAAAAIbmlzdHAyNTYAAABBBF5"
	DefaultEd25519PubKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAI"
	DefaultRSAPubKey     = "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQD"
)

type Config struct {
	ReversePort   string `yaml:"reverse_port"`
	ECDSAPubKey   string `yaml:"ecdsa_pubkey"`
	Ed25519PubKey string `yaml:"ed25519_pubkey"`
	RSAPubKey     string `yaml:"rsa_pubkey"`
	// KnownHosts is the target file; empty means ~/.ssh/known_hosts.
	KnownHosts string `yaml:"known_hosts"`
	Keygen     struct {
		Path string `yaml:"path"`
		File string `yaml:"file"`
	} `yaml:"keygen"`
	// Journal is an optional SQLite file recording seeding runs.
	Journal string `yaml:"journal"`
}

// DefaultConfig returns the built-in test configuration.
func DefaultConfig() Config {
	var cfg Config
	cfg.ReversePort = DefaultReversePort
	cfg.ECDSAPubKey = DefaultECDSAPubKey
	cfg.Ed25519PubKey = DefaultEd25519PubKey
	cfg.RSAPubKey = DefaultRSAPubKey
	cfg.Keygen.Path = "ssh-keygen"
	return cfg
}

// DefaultConfigPath resolves $XDG_CONFIG_HOME/hostseed/config.yaml or ~/.config/hostseed/config.yaml.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "hostseed", "config.yaml")
}

// LoadConfig reads YAML configuration over the defaults. If path is empty the
// default location is used and a missing file is not an error. Fields absent
// from the file keep their defaults; a key field set to "" is not registered.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// HostKeys returns the keys to register for the reverse tunnel port.
func (c Config) HostKeys() gssh.HostKeys {
	return gssh.HostKeys{
		Port:    c.ReversePort,
		ECDSA:   c.ECDSAPubKey,
		Ed25519: c.Ed25519PubKey,
		RSA:     c.RSAPubKey,
	}
}

// KnownHostsPath returns the absolute target file path.
func (c Config) KnownHostsPath() (string, error) {
	if c.KnownHosts == "" {
		return gssh.DefaultKnownHostsPath()
	}
	return gssh.ExpandHome(c.KnownHosts)
}
