package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nameforge/internal/api"
	"nameforge/internal/app"
	"nameforge/internal/config"
	"nameforge/internal/core"
	"nameforge/internal/encryption"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// expandPaths turns directory arguments into their immediate files.
// Dotfiles and nested directories are skipped.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	return paths, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(raw), nil
}

var rootCmd = &cobra.Command{
	Use:   "nameforge",
	Short: "AI-assisted batch file renamer",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Provider:   %s\n", cfg.Provider.Type)
		fmt.Printf("Case Style: %s\n", cfg.Processing.CaseStyle)
		fmt.Printf("History:    %s (keep %d)\n", cfg.History.Type, cfg.History.Keep)
		fmt.Printf("Archive:    %s\n", cfg.Archive.Type)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if cfg.Encryption.Type != "age" {
			return fmt.Errorf("encryption type is %q, set it to \"age\" first", cfg.Encryption.Type)
		}

		passphrase, err := promptPassphrase("Passphrase for the private key: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		if enc.IsConfigured() {
			return fmt.Errorf("key pair already exists, remove the key files to regenerate")
		}
		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating key pair: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest [PATH...]",
	Short: "Generate rename suggestions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		outPath, _ := cmd.Flags().GetString("out")

		paths, err := expandPaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("No files to process.")
			return nil
		}

		a, err := newApp("suggest")
		if err != nil {
			return err
		}
		defer a.Close()

		onProgress := func(p core.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", p.Completed, p.Total, filepath.Base(p.CurrentFile))
		}

		results, err := a.Suggest(cmd.Context(), paths, concurrency, onProgress)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr)

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}

		if outPath != "" {
			fmt.Printf("Wrote %d suggestion(s) to %s\n", len(results), outPath)
		}
		return nil
	},
}

// apply command
var applyCmd = &cobra.Command{
	Use:   "apply PLAN",
	Short: "Apply a suggestion plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading plan: %w", err)
		}
		var results []core.SuggestionResult
		if err := json.Unmarshal(data, &results); err != nil {
			return fmt.Errorf("parsing plan: %w", err)
		}

		a, err := newApp("apply")
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.Apply(cmd.Context(), results, dryRun)
		if outcome != nil {
			printOutcome(outcome)
		}
		if err != nil {
			return fmt.Errorf("apply failed: %w", err)
		}
		return nil
	},
}

func printOutcome(o *core.CommitOutcome) {
	if o.DryRun {
		fmt.Println("Dry run, nothing renamed:")
	}
	for _, op := range o.Operations {
		fmt.Printf("  %s -> %s\n", op.SourcePath, filepath.Base(op.DestinationPath))
	}
	for _, f := range o.Failed {
		fmt.Printf("  FAILED %s: %s\n", f.Path, f.Reason)
	}
	if !o.DryRun {
		fmt.Printf("Applied %d rename(s), batch %s\n", o.Applied, o.BatchID)
	}
}

// undo command
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent rename batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("undo")
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.Undo()
		if err != nil {
			return err
		}

		fmt.Printf("Restored %d file(s) from batch %s\n", outcome.Restored, outcome.BatchID)
		for _, e := range outcome.Errors {
			fmt.Printf("  FAILED %s: %s\n", e.Path, e.Reason)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View rename batch history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer a.Close()

		batches, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(batches) == 0 {
			fmt.Println("No rename batches recorded.")
			return nil
		}

		for _, b := range batches {
			fmt.Printf("%s  %s  %-19s  %d op(s)\n",
				b.ID,
				b.CreatedAt.Format("2006-01-02 15:04:05"),
				b.Status,
				len(b.Operations),
			)
		}
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived history snapshots",
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the history database from the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if cfg.Encryption.Type == "age" {
			passphrase, err = promptPassphrase("Passphrase for the private key: ")
			if err != nil {
				return err
			}
		}

		if err := app.RestoreHistorySnapshot(cfg, passphrase); err != nil {
			return err
		}
		fmt.Println("History database restored from archive.")
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Server.Addr
		}

		a, err := app.NewApp(cfg, "serve")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		logger := core.Logger(&stderrLogger{})
		handler := api.NewHandler(a, logger)
		return api.NewServer(addr, handler, logger).Run()
	},
}

// stderrLogger is a minimal logger for server lifecycle messages.
type stderrLogger struct{}

func (l *stderrLogger) print(msg string, args []any) {
	fmt.Fprintln(os.Stderr, append([]any{msg}, args...)...)
}

func (l *stderrLogger) Debug(msg string, args ...any) {}
func (l *stderrLogger) Info(msg string, args ...any)  { l.print(msg, args) }
func (l *stderrLogger) Warn(msg string, args ...any)  { l.print(msg, args) }
func (l *stderrLogger) Error(msg string, args ...any) { l.print(msg, args) }

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetKeyCmd)

	archiveCmd.AddCommand(archiveRestoreCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntP("concurrency", "c", 0, "Concurrent suggestion requests (0 uses the configured maximum)")
	suggestCmd.Flags().StringP("out", "o", "", "Write the suggestion plan to a file instead of stdout")
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Bool("dry-run", false, "Plan the renames without touching the filesystem")
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of batches to show")
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to the configured server.addr)")
}
