package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	core "github.com/3cpo-dev/hostseed/internal/core"
	gssh "github.com/3cpo-dev/hostseed/internal/ssh"
)

// Load the config and apply flags shared by seed and verify
func resolveConfig(cmd *cobra.Command) (core.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := core.LoadConfig(cfgPath)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("known-hosts"); v != "" {
		cfg.KnownHosts = v
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		cfg.ReversePort = v
	}
	skip, _ := cmd.Flags().GetStringSlice("skip")
	if err := applySkips(&cfg, skip); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applySkips(cfg *core.Config, skip []string) error {
	for _, s := range skip {
		switch s {
		case "ecdsa":
			cfg.ECDSAPubKey = ""
		case "ed25519":
			cfg.Ed25519PubKey = ""
		case "rsa":
			cfg.RSAPubKey = ""
		default:
			return fmt.Errorf("unknown key type %q (want ecdsa, ed25519 or rsa)", s)
		}
	}
	return nil
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("known-hosts", "", "known_hosts file (default ~/.ssh/known_hosts)")
	cmd.Flags().String("port", "", "reverse tunnel port")
	cmd.Flags().StringSlice("skip", nil, "key types to leave out: ecdsa, ed25519, rsa")
}

// Seed the known_hosts file
func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the [localhost]:<port> entries with the test host keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("keygen"); v != "" {
				cfg.Keygen.Path = v
			}
			if v, _ := cmd.Flags().GetString("journal"); v != "" {
				cfg.Journal = v
			}
			strict, _ := cmd.Flags().GetBool("strict")
			path, err := cfg.KnownHostsPath()
			if err != nil {
				return err
			}
			s := &gssh.Seeder{
				Remover: gssh.KeygenRemover{Path: cfg.Keygen.Path, File: cfg.Keygen.File},
				Path:    path,
				Strict:  strict,
			}
			res, err := s.Seed(cmd.Context(), cfg.HostKeys())
			if err != nil {
				return err
			}
			if cfg.Journal != "" {
				if err := journalRun(cmd, cfg.Journal, res); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s in %s (%d lines)\n", res.Pattern, res.Path, res.Lines)
			return nil
		},
	}
	addKeyFlags(cmd)
	cmd.Flags().String("keygen", "", "ssh-keygen binary used to remove the old entry")
	cmd.Flags().String("journal", "", "SQLite journal to record the run in")
	cmd.Flags().Bool("strict", false, "reject keys that do not parse and drop key comments")
	return cmd
}

func journalRun(cmd *cobra.Command, path string, res gssh.SeedResult) error {
	store, err := core.NewStore(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	run := core.Run{Pattern: res.Pattern, Path: res.Path, Lines: res.Lines}
	if res.RemoveErr != nil {
		run.RemoveError = res.RemoveErr.Error()
	}
	id, err := store.RecordRun(cmd.Context(), run)
	if err != nil {
		return err
	}
	log.Debug().Int64("id", id).Str("journal", path).Msg("run recorded")
	return nil
}

// Check the configured keys against the known_hosts file
func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that known_hosts accepts the configured keys for [localhost]:<port>",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			path, err := cfg.KnownHostsPath()
			if err != nil {
				return err
			}
			checks, err := gssh.Verify(path, cfg.HostKeys())
			if err != nil {
				return err
			}
			failed := 0
			out := cmd.OutOrStdout()
			for _, c := range checks {
				if c.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL\t%s\t%v\n", c.Type, c.Err)
					continue
				}
				fmt.Fprintf(out, "ok\t%s\t%s\n", c.Type, c.Fingerprint)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d keys not accepted for %s", failed, len(checks), cfg.HostKeys().Pattern())
			}
			return nil
		},
	}
	addKeyFlags(cmd)
	return cmd
}

// List journaled seeding runs
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List seeding runs recorded in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := core.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("journal")
			if path == "" {
				path = cfg.Journal
			}
			if path == "" {
				return fmt.Errorf("no journal configured")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := core.NewStore(path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Pattern, r.Lines, r.Path, r.RemoveError)
			}
			return nil
		},
	}
	cmd.Flags().String("journal", "", "SQLite journal file")
	cmd.Flags().Int("limit", 20, "maximum number of runs to show (0 for all)")
	return cmd
}
