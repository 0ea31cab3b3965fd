package ssh

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRemover struct {
	patterns []string
	err      error
}

func (f *fakeRemover) Remove(ctx context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return f.err
}

var testKeys = HostKeys{
	Port:    "56789",
	ECDSA:   "ecdsa-sha2-nistp256 AAAA...",
	Ed25519: "ssh-ed25519 AAAA...",
	RSA:     "ssh-rsa AAAA...",
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read known_hosts: %v", err)
	}
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestSeedWritesAllKeysInOrder(t *testing.T) {
	kh := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(kh, nil, 0600); err != nil {
		t.Fatal(err)
	}
	rm := &fakeRemover{}
	s := &Seeder{Remover: rm, Path: kh}
	res, err := s.Seed(context.Background(), testKeys)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Lines != 3 {
		t.Fatalf("expected 3 lines, got %d", res.Lines)
	}
	b, err := os.ReadFile(kh)
	if err != nil {
		t.Fatal(err)
	}
	want := "[localhost]:56789 ecdsa-sha2-nistp256 AAAA...\n" +
		"[localhost]:56789 ssh-ed25519 AAAA...\n" +
		"[localhost]:56789 ssh-rsa AAAA...\n"
	if string(b) != want {
		t.Fatalf("unexpected content:\n%s", b)
	}
	if len(rm.patterns) != 1 || rm.patterns[0] != "[localhost]:56789" {
		t.Fatalf("unexpected removal calls: %v", rm.patterns)
	}
}

func TestSeedSkipsAbsentKeys(t *testing.T) {
	cases := []struct {
		name string
		keys HostKeys
		want []string
	}{
		{"no ecdsa", HostKeys{Port: "2222", Ed25519: "ssh-ed25519 A", RSA: "ssh-rsa B"},
			[]string{"[localhost]:2222 ssh-ed25519 A", "[localhost]:2222 ssh-rsa B"}},
		{"only rsa", HostKeys{Port: "2222", RSA: "ssh-rsa B"},
			[]string{"[localhost]:2222 ssh-rsa B"}},
		{"blank ed25519", HostKeys{Port: "2222", ECDSA: "ecdsa-sha2-nistp256 C", Ed25519: "  "},
			[]string{"[localhost]:2222 ecdsa-sha2-nistp256 C"}},
		{"none", HostKeys{Port: "2222"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kh := filepath.Join(t.TempDir(), "known_hosts")
			rm := &fakeRemover{}
			s := &Seeder{Remover: rm, Path: kh}
			res, err := s.Seed(context.Background(), tc.keys)
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			got := readLines(t, kh)
			if len(got) != len(tc.want) || res.Lines != len(tc.want) {
				t.Fatalf("expected %d lines, got %d (%v)", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("line %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
			if len(rm.patterns) != 1 || rm.patterns[0] != "[localhost]:2222" {
				t.Fatalf("removal must use configured port, got %v", rm.patterns)
			}
		})
	}
}

func TestSeedTwiceAppendsTwice(t *testing.T) {
	kh := filepath.Join(t.TempDir(), "known_hosts")
	s := &Seeder{Remover: &fakeRemover{}, Path: kh}
	for i := 0; i < 2; i++ {
		if _, err := s.Seed(context.Background(), testKeys); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	if got := readLines(t, kh); len(got) != 6 {
		t.Fatalf("expected 6 lines after two runs, got %d", len(got))
	}
}

func TestSeedMissingParentDir(t *testing.T) {
	kh := filepath.Join(t.TempDir(), "missing", "known_hosts")
	s := &Seeder{Remover: &fakeRemover{}, Path: kh}
	_, err := s.Seed(context.Background(), testKeys)
	if err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := os.Stat(kh); !os.IsNotExist(err) {
		t.Fatalf("known_hosts must not be created")
	}
}

func TestSeedIgnoresRemovalFailure(t *testing.T) {
	kh := filepath.Join(t.TempDir(), "known_hosts")
	rm := &fakeRemover{err: errors.New("exit status 255")}
	s := &Seeder{Remover: rm, Path: kh}
	res, err := s.Seed(context.Background(), testKeys)
	if err != nil {
		t.Fatalf("removal failure must not fail seeding: %v", err)
	}
	if res.RemoveErr == nil {
		t.Fatalf("expected removal error to be reported")
	}
	if res.Lines != 3 {
		t.Fatalf("expected 3 lines, got %d", res.Lines)
	}
}

func TestSeedWithMissingKeygenBinary(t *testing.T) {
	kh := filepath.Join(t.TempDir(), "known_hosts")
	s := &Seeder{Remover: KeygenRemover{Path: filepath.Join(t.TempDir(), "no-such-keygen")}, Path: kh}
	res, err := s.Seed(context.Background(), testKeys)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.RemoveErr == nil {
		t.Fatalf("expected removal error for missing binary")
	}
}

type closeFailer struct {
	strings.Builder
}

func (c *closeFailer) Close() error { return errors.New("disk quota exceeded") }

func TestWriteRecordsReportsCloseError(t *testing.T) {
	w := &closeFailer{}
	n, err := writeRecords(w, []string{"[localhost]:1 ssh-rsa A", "[localhost]:1 ssh-ed25519 B"})
	if err == nil {
		t.Fatalf("expected close error")
	}
	if n != 2 {
		t.Fatalf("expected 2 lines written, got %d", n)
	}
	if w.String() != "[localhost]:1 ssh-rsa A\n[localhost]:1 ssh-ed25519 B\n" {
		t.Fatalf("unexpected content %q", w.String())
	}
}
