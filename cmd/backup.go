package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/fintrack/internal/backup"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Show stored documents, export or import the ledger",
	Args:  cobra.NoArgs,
	RunE:  runBackupInfo,
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every document as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace documents from a JSON backup or browser localStorage dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupImport,
}

func init() {
	backupImportCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupInfo(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	entries, err := s.Entries()
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("STORED DOCUMENTS"))
	fmt.Printf("  %s\n\n", cfg.DBPath())
	if len(entries) == 0 {
		fmt.Println("  Nothing stored yet.")
		fmt.Println()
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, fmt.Sprintf("%d B", e.Size), cli.FormatAge(e.UpdatedAt, now)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Key", "Size", "Updated"},
		Rows:     rows,
		LeftCols: 1,
	}))
	return nil
}

func runBackupExport(_ *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		var w io.Writer = os.Stdout
		if len(args) == 1 {
			f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path given by the user
			if err != nil {
				return fmt.Errorf("creating backup file: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		if err := backup.Export(kv, w); err != nil {
			return err
		}
		if len(args) == 1 && !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Backup written to %s\n", args[0])
		}
		return nil
	})
}

func runBackupImport(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0]) //nolint:gosec // path given by the user
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer func() { _ = f.Close() }()

	return withStore(func(_ config.Config, kv store.KV) error {
		if err := confirm(fmt.Sprintf("Replace stored documents with the contents of %s?", args[0])); err != nil {
			return err
		}
		res, err := backup.Import(kv, f)
		if err != nil {
			return err
		}
		for _, p := range res.Problems {
			warn("skipped " + p)
		}
		log.WithFields(logrus.Fields{
			"subscriptions": res.Subscriptions,
			"debts":         res.Debts,
			"wallet":        res.Wallet,
			"skipped":       res.Skipped,
		}).Info("backup imported")

		wallet := "not in backup"
		if res.Wallet {
			wallet = "replaced"
		}
		fmt.Printf("  Imported %s and %s; wallet %s\n",
			cli.Plural(res.Subscriptions, "subscription"), cli.Plural(res.Debts, "debt"), wallet)
		return nil
	})
}
