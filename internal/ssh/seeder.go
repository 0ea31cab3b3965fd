package ssh

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	xssh "golang.org/x/crypto/ssh"
)

// Seeder registers HostKeys in a known_hosts file.
type Seeder struct {
	Remover Remover
	// Path is the target file. Its parent directory must already exist.
	Path string
	// Strict parses every key and writes it re-encoded without its comment.
	// Seeding fails before the file is opened if any key does not parse.
	Strict bool
}

// SeedResult reports what a Seed call did.
type SeedResult struct {
	Pattern string
	Path    string
	Lines   int
	// RemoveErr is the ignored error of the removal step, if any.
	RemoveErr error
}

// Seed removes any existing entry for the host pattern and appends one line
// per configured key. The removal result never fails the call. Nothing is
// rolled back when the append fails partway.
func (s *Seeder) Seed(ctx context.Context, keys HostKeys) (SeedResult, error) {
	pattern := keys.Pattern()
	res := SeedResult{Pattern: pattern, Path: s.Path}

	if s.Remover != nil {
		if err := s.Remover.Remove(ctx, pattern); err != nil {
			res.RemoveErr = err
			log.Debug().Err(err).Str("pattern", pattern).Msg("known_hosts removal failed, ignoring")
		}
	}

	records, err := s.records(pattern, keys.Keys())
	if err != nil {
		return res, err
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return res, fmt.Errorf("open known_hosts: %w", err)
	}
	res.Lines, err = writeRecords(f, records)
	if err != nil {
		return res, err
	}
	log.Debug().Str("pattern", pattern).Str("path", s.Path).Int("lines", res.Lines).Msg("known_hosts seeded")
	return res, nil
}

// writeRecords writes one line per record and closes w. A failed close is
// reported when every write succeeded.
func writeRecords(w io.WriteCloser, records []string) (n int, err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close known_hosts: %w", cerr)
		}
	}()
	for _, line := range records {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return n, fmt.Errorf("write known_hosts: %w", err)
		}
		n++
	}
	return n, nil
}

func (s *Seeder) records(pattern string, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if !s.Strict {
			out = append(out, FormatRecord(pattern, key))
			continue
		}
		pub, err := ParseHostKey(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyType(key), err)
		}
		out = append(out, FormatRecord(pattern, strings.TrimSpace(string(xssh.MarshalAuthorizedKey(pub)))))
	}
	return out, nil
}
