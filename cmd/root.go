// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagLogLevel string
	flagLogJSON  bool
	flagQuiet    bool
	flagYes      bool
)

// log is shared by every command and handed to the packages that log.
var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker",
	Long:  "Track subscriptions, debts and investments: overdue bills, payment ledgers and allocation P/L.",
	RunE:  runTUI,

	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database file (default from config or $"+config.EnvDB+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress and alert output")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	log.SetOutput(os.Stderr)
	if flagLogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level := flagLogLevel
	if level == "" {
		level = os.Getenv(config.EnvLogLevel)
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}

// loadConfig reads the config file and applies the --db override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	return cfg, nil
}

// openStore opens the configured database. Callers close it.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath()
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.WithField("path", path).Debug("database opened")
	return s, nil
}

// withStore loads config, opens the store and runs fn against it.
func withStore(fn func(cfg config.Config, kv store.KV) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(cfg, s)
}

func today() date.Date { return date.Today() }

// parseDateFlag reads a YYYY-MM-DD flag value, defaulting to today.
func parseDateFlag(s string) (date.Date, error) {
	if strings.TrimSpace(s) == "" {
		return today(), nil
	}
	return date.Parse(s)
}

// warn prints an alert line on stderr unless --quiet.
func warn(msg string) {
	if !flagQuiet {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(msg))
	}
}

var errAborted = errors.New("aborted")

// confirm asks a yes/no question on stdin unless --yes was given.
func confirm(prompt string) error {
	return confirmFrom(os.Stdin, os.Stdout, prompt)
}

func confirmFrom(in io.Reader, out io.Writer, prompt string) error {
	if flagYes {
		return nil
	}
	fmt.Fprintf(out, "  %s [y/N] ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}

// resolveID finds the record an argument refers to: an exact ID, a unique
// ID prefix or an exact name (case-insensitive).
func resolveID(arg string, ids, names []string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("an ID or name is required")
	}

	var prefix []string
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if strings.HasPrefix(id, arg) {
			prefix = append(prefix, id)
		}
	}
	if len(prefix) == 1 {
		return prefix[0], nil
	}
	if len(prefix) > 1 {
		return "", fmt.Errorf("%q matches %d records, use more of the ID", arg, len(prefix))
	}

	var byName []string
	for i, n := range names {
		if strings.EqualFold(n, arg) {
			byName = append(byName, ids[i])
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
		return "", fmt.Errorf("no record matches %q", arg)
	}
	return "", fmt.Errorf("%d records are named %q, use the ID", len(byName), arg)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
