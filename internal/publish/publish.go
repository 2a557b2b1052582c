// Package publish turns an exported animation script into a palette-driven
// one in place and returns the manifest of its customization slots.
//
// A publish reads the whole file, checks the processed marker, rewrites the
// text in memory, appends the marker, overwrites the file and finally mines
// the slots from the text it just wrote. A failure at any step before the
// write leaves the file untouched.
//
// Publishing is synchronous and takes no lock. Two concurrent publishes of
// the same file race between the marker check and the write, and both may
// rewrite it; callers must not do that.
package publish

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/roach88/animpub/internal/guard"
	"github.com/roach88/animpub/internal/ident"
	"github.com/roach88/animpub/internal/ir"
	"github.com/roach88/animpub/internal/registry"
	"github.com/roach88/animpub/internal/rewrite"
	"github.com/roach88/animpub/internal/rules"
	"github.com/roach88/animpub/internal/schema"
	"github.com/roach88/animpub/internal/store"
)

// ScriptExt is the only extension Publish accepts.
const ScriptExt = ".js"

// DefaultBackupSuffix is inserted before the extension of backup copies.
const DefaultBackupSuffix = ".orig"

// Ledger records completed publications.
type Ledger interface {
	RecordPublication(ctx context.Context, p store.Publication) (int64, error)
}

// Publisher publishes scripts on a file system.
type Publisher struct {
	// FS holds the scripts. Required.
	FS billy.Filesystem

	// IDs supplies composition ids. Nil means ident.UUIDGenerator.
	IDs ident.Generator

	// Ledger, if set, records every publication.
	Ledger Ledger

	// Logger receives progress and skip messages. Nil means slog.Default().
	Logger *slog.Logger

	// CacheDir replaces the bitmap cache prefix. Empty means
	// rules.DefaultCacheDir.
	CacheDir string

	// BackupSuffix names backup copies. Empty means DefaultBackupSuffix.
	BackupSuffix string
}

// Options control a single publish.
type Options struct {
	// Force publishes even when the file carries the processed marker.
	Force bool

	// Backup writes an untouched copy of the input before rewriting it.
	Backup bool

	// Interactive turns an already published file into an error instead
	// of a logged no-op.
	Interactive bool
}

// Result describes a publish.
type Result struct {
	File          string        `json:"file" yaml:"file"`
	CompositionID string        `json:"composition_id,omitempty" yaml:"composition_id,omitempty"`
	Slots         []ir.Slot     `json:"slots" yaml:"slots"`
	Manifest      *ir.Manifest  `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	BackupPath    string        `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	ContentHash   string        `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	Seq           int64         `json:"seq,omitempty" yaml:"seq,omitempty"`
	Skipped       bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Trace         rewrite.Trace `json:"-" yaml:"-"`
}

// New returns a Publisher over fs with default collaborators.
func New(fs billy.Filesystem) *Publisher {
	return &Publisher{FS: fs}
}

func (p *Publisher) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Publisher) ids() ident.Generator {
	if p.IDs != nil {
		return p.IDs
	}
	return ident.UUIDGenerator{}
}

func (p *Publisher) backupSuffix() string {
	if p.BackupSuffix != "" {
		return p.BackupSuffix
	}
	return DefaultBackupSuffix
}

// BackupPath returns where Publish copies path when asked for a backup:
// the same directory, with suffix inserted before the extension.
func BackupPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// Publish rewrites the script at path in place.
//
// An already published file yields a *Error of KindAlreadyProcessed when
// opts.Interactive is set and a Result with Skipped set otherwise.
func (p *Publisher) Publish(ctx context.Context, path string, opts Options) (*Result, error) {
	log := p.logger().With("file", path)

	if err := checkExt(path); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(p.FS, path)
	if err != nil {
		return nil, ioFailure(path, "failed to read script", err)
	}
	text := string(data)

	decision, err := guard.Check(text, guard.Options{Force: opts.Force, Interactive: opts.Interactive})
	if err != nil {
		return nil, &Error{Kind: KindAlreadyProcessed, Path: path, Message: "already published; use force to publish again", Err: err}
	}
	if decision == guard.Skip {
		log.Info("already published, skipping")
		return &Result{File: path, Slots: []ir.Slot{}, Skipped: true}, nil
	}

	res := &Result{File: path}
	if opts.Backup {
		res.BackupPath = BackupPath(path, p.backupSuffix())
		if err := util.WriteFile(p.FS, res.BackupPath, data, fileMode(p.FS, path)); err != nil {
			return nil, ioFailure(path, "failed to write backup", err)
		}
		log.Debug("backup written", "backup", res.BackupPath)
	}

	res.CompositionID = p.ids().Generate()
	out, trace := rewrite.New(rules.Params{
		CompositionID: res.CompositionID,
		FileName:      baseName(path),
		CacheDir:      p.CacheDir,
	}).Run(text)
	if trace.Count(rules.NameCompositionID) == 0 {
		// A forced republish keeps the id the first publish wrote.
		res.CompositionID = ""
		if entry, ok := registry.Scan(out); ok {
			res.CompositionID = entry.ID
		}
	}
	out = guard.Mark(out)
	res.Trace = trace
	for _, step := range trace {
		log.Debug("rule applied", "rule", step.Rule, "count", step.Count)
	}

	if err := util.WriteFile(p.FS, path, []byte(out), fileMode(p.FS, path)); err != nil {
		return nil, ioFailure(path, "failed to write script", err)
	}

	res.Slots = schema.Mine(out)
	res.ContentHash = ir.ContentHash(out)
	manifest, err := ir.NewManifest(path, res.CompositionID, res.Slots)
	if err != nil {
		return nil, ioFailure(path, "failed to hash manifest", err)
	}
	res.Manifest = &manifest

	if p.Ledger != nil {
		seq, err := p.Ledger.RecordPublication(ctx, store.Publication{
			File:          path,
			CompositionID: res.CompositionID,
			ContentHash:   res.ContentHash,
			ManifestHash:  manifest.Hash,
			Slots:         res.Slots,
		})
		if err != nil {
			return nil, ioFailure(path, "failed to record publication", err)
		}
		res.Seq = seq
	}

	log.Info("published", "composition_id", res.CompositionID, "slots", len(res.Slots), "replacements", trace.Total())
	return res, nil
}

// Inspect mines the slots of an already published script without
// modifying it.
func (p *Publisher) Inspect(path string) (*Result, error) {
	if err := checkExt(path); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(p.FS, path)
	if err != nil {
		return nil, ioFailure(path, "failed to read script", err)
	}
	text := string(data)
	if !guard.Marked(text) {
		return nil, &Error{Kind: KindNotPublished, Path: path, Message: "script has not been published"}
	}

	res := &Result{File: path, Slots: schema.Mine(text), ContentHash: ir.ContentHash(text)}
	if entry, ok := registry.Scan(text); ok {
		res.CompositionID = entry.ID
	}
	manifest, err := ir.NewManifest(path, res.CompositionID, res.Slots)
	if err != nil {
		return nil, ioFailure(path, "failed to hash manifest", err)
	}
	res.Manifest = &manifest
	return res, nil
}

func checkExt(path string) error {
	if ext := filepath.Ext(path); ext != ScriptExt {
		return &Error{
			Kind:    KindUnsupportedFileType,
			Path:    path,
			Message: "unsupported file type " + quoteExt(ext) + ", expected " + ScriptExt,
		}
	}
	return nil
}

func quoteExt(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return `"` + ext + `"`
}

// baseName is the file name registered for path: no directory, no extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileMode keeps the permissions of an existing file.
func fileMode(fs billy.Filesystem, path string) os.FileMode {
	if fi, err := fs.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}
