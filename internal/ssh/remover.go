package ssh

import (
	"context"
	"fmt"
	"os/exec"
)

// Remover deletes existing known_hosts entries for a host pattern.
type Remover interface {
	Remove(ctx context.Context, pattern string) error
}

// KeygenRemover removes entries by running `ssh-keygen -R <pattern>`.
type KeygenRemover struct {
	// Path of the ssh-keygen binary. Defaults to "ssh-keygen" looked up in PATH.
	Path string
	// File is passed as -f when set; otherwise ssh-keygen uses its own default.
	File string
}

func (r KeygenRemover) args(pattern string) []string {
	args := []string{"-R", pattern}
	if r.File != "" {
		args = append(args, "-f", r.File)
	}
	return args
}

// Remove runs the removal command with stdout and stderr discarded.
func (r KeygenRemover) Remove(ctx context.Context, pattern string) error {
	bin := r.Path
	if bin == "" {
		bin = "ssh-keygen"
	}
	// Nil Stdout/Stderr are connected to the null device.
	cmd := exec.CommandContext(ctx, bin, r.args(pattern)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s -R %s: %w", bin, pattern, err)
	}
	return nil
}
