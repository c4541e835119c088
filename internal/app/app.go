// Package app is the application layer between the CLI/API and the core
// Service. It constructs all dependencies from config and manages the
// history store lifecycle on Close.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nameforge/internal/archive"
	"nameforge/internal/caser"
	"nameforge/internal/config"
	"nameforge/internal/core"
	"nameforge/internal/encryption"
	"nameforge/internal/fs"
	"nameforge/internal/history"
	"nameforge/internal/history/migrations"
	"nameforge/internal/suggest"
	"nameforge/internal/tags"
)

// snapshotter is the optional history-store capability used to archive
// the database on Close. The in-memory store does not provide it.
type snapshotter interface {
	BackupTo(destPath string) error
}

// App wires the suggestion provider, tagger, history store, and archive
// into a core.Service and exposes high-level operations that accept raw
// string paths. The caller must call Close when done.
type App struct {
	cfg       *config.Config
	history   core.HistoryStore
	archive   core.Archive
	encryptor core.Encryptor
	fsmgr     core.FilesystemManager
	service   *core.Service
	logFile   *os.File
	logger    core.Logger
	mutated   bool
}

// NewApp creates a fully wired App from the given config. operation
// identifies the command being run (e.g. "suggest", "apply") and shows
// up in the log stream.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager()

	suggester, err := suggest.NewSuggesterFromConfig(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating suggestion provider: %w", err)
	}

	store, err := history.NewStoreFromConfig(cfg.History, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	arch, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	// Check the local history version against the archived snapshot.
	if arch != nil {
		remoteVersion, err := arch.LatestVersion(cfg.HostID)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("checking archived snapshot version: %w", err)
		}
		localMax, err := store.MaxSeq()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("checking local history version: %w", err)
		}
		if remoteVersion > localMax {
			store.Close()
			return nil, fmt.Errorf("local history is behind the archive (local=%d, archived=%d): restore the snapshot or re-initialize", localMax, remoteVersion)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	svc := core.NewService(store, fsmgr, suggester, tags.NewTaggerFromAvailability(), adapter, core.RealClock{}, core.UUIDGenerator{}, serviceOptions(cfg))

	return &App{
		cfg:       cfg,
		history:   store,
		archive:   arch,
		encryptor: enc,
		fsmgr:     fsmgr,
		service:   svc,
		logFile:   logFile,
		logger:    adapter,
	}, nil
}

func serviceOptions(cfg *config.Config) core.Options {
	p := cfg.Processing
	return core.Options{
		CaseStyle:         caser.Style(p.CaseStyle),
		PreserveExtension: p.PreserveExtension,
		IncludeDatePrefix: p.IncludeDatePrefix,
		DateFormat:        p.DateFormat,
		TagCount:          p.TagCount,
		ApplyTags:         p.ApplyTags,
		TagMode:           core.TagMode(p.TagMode),
		NeighborCount:     p.NeighborCount,
		FolderDepth:       p.FolderDepth,
		HistoryKeep:       cfg.History.Keep,
	}
}

// Suggest runs the suggestion pipeline over the given paths. concurrency
// of 0 falls back to the configured maximum.
func (a *App) Suggest(ctx context.Context, rawPaths []string, concurrency int, onProgress core.ProgressFunc) ([]core.SuggestionResult, error) {
	paths := make([]string, 0, len(rawPaths))
	for _, p := range rawPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", p, err)
		}
		paths = append(paths, abs)
	}

	if concurrency <= 0 {
		concurrency = a.cfg.Processing.MaxConcurrency
	}
	return a.service.Process(ctx, core.Tasks(paths), concurrency, onProgress), nil
}

// Apply commits the approved results. With dryRun the plan is computed
// and returned without touching the filesystem or the history.
func (a *App) Apply(ctx context.Context, results []core.SuggestionResult, dryRun bool) (*core.CommitOutcome, error) {
	outcome, err := a.service.Commit(ctx, results, dryRun)
	if outcome != nil && !outcome.DryRun && outcome.Applied > 0 {
		a.mutated = true
	}
	return outcome, err
}

// Undo reverses the most recent committed batch.
func (a *App) Undo() (*core.UndoOutcome, error) {
	outcome, err := a.service.Undo()
	if outcome != nil && outcome.Restored > 0 {
		a.mutated = true
	}
	return outcome, err
}

// History returns the most recent batches, newest first.
func (a *App) History(limit int) ([]*core.RenameBatch, error) {
	return a.service.History(limit)
}

// Close finalizes the run and releases all resources. After a mutating
// run with an archive configured, a snapshot of the history database is
// encrypted and uploaded with version = max batch sequence.
func (a *App) Close() error {
	var firstErr error

	if a.mutated && a.archive != nil {
		if err := a.archiveSnapshot(); err != nil {
			a.logger.Error("archiving history snapshot", "error", err)
			firstErr = err
		}
	}

	if err := a.history.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing history store: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// archiveSnapshot writes a consistent copy of the history database,
// encrypts it, and uploads it to the archive.
func (a *App) archiveSnapshot() error {
	snap, ok := a.history.(snapshotter)
	if !ok {
		a.logger.Warn("history store does not support snapshots, skipping archive upload")
		return nil
	}

	version, err := a.history.MaxSeq()
	if err != nil {
		return fmt.Errorf("reading history version: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "nameforge-history-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := snap.BackupTo(tmpPath); err != nil {
		return fmt.Errorf("snapshotting history database: %w", err)
	}

	encPath := tmpPath + ".enc"
	if err := a.encryptFile(tmpPath, encPath); err != nil {
		return err
	}
	defer os.Remove(encPath)

	f, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := a.archive.PutSnapshot(a.cfg.HostID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	a.logger.Info("archived history snapshot", "version", version, "bytes", info.Size())
	return nil
}

func (a *App) encryptFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	defer dest.Close()

	if err := a.encryptor.Encrypt(src, dest); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return nil
}

// RestoreHistorySnapshot downloads the archived snapshot for this host,
// decrypts it, and writes it over the local history database. It must be
// run while no other nameforge process is using the store. passphrase
// unlocks the private key when age encryption is configured.
func RestoreHistorySnapshot(cfg *config.Config, passphrase string) error {
	if cfg.History.Type != "sqlite" {
		return fmt.Errorf("history type %q does not support snapshot restore", cfg.History.Type)
	}

	arch, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if arch == nil {
		return fmt.Errorf("no archive configured")
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if age, ok := enc.(*encryption.AgeEncryptor); ok {
		if err := age.Unlock(passphrase); err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp("", "nameforge-restore-*.enc")
	if err != nil {
		return fmt.Errorf("creating temp file for download: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := arch.GetSnapshot(cfg.HostID, tmpFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("writing downloaded snapshot: %w", err)
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("opening downloaded snapshot: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(cfg.History.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(cfg.History.DataDir, cfg.HostID+".db")
	dest, err := os.Create(dbPath)
	if err != nil {
		return fmt.Errorf("creating history database: %w", err)
	}

	if err := enc.Decrypt(src, dest); err != nil {
		dest.Close()
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("writing history database: %w", err)
	}

	// Verify the restored database carries the schema this binary expects
	// before declaring the restore done.
	db, err := history.OpenConnection(dbPath)
	if err != nil {
		return fmt.Errorf("opening restored database: %w", err)
	}
	defer db.Close()
	if err := migrations.CheckStatus(db); err != nil {
		return fmt.Errorf("restored database failed schema check: %w", err)
	}
	return nil
}
