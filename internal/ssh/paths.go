package ssh

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome returns path as an absolute path, resolving a leading ~ against
// the current user's home directory.
func ExpandHome(path string) (string, error) {
	switch {
	case path == "":
		return "", errors.New("path is empty")
	case path == "~", strings.HasPrefix(path, "~/"), strings.HasPrefix(path, `~\`):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// DefaultKnownHostsPath returns the absolute path of ~/.ssh/known_hosts.
func DefaultKnownHostsPath() (string, error) {
	return ExpandHome("~/.ssh/known_hosts")
}
