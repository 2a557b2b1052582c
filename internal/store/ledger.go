package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/animpub/internal/ir"
)

// Publication is one ledger row.
type Publication struct {
	Seq           int64     `json:"seq" yaml:"seq"`
	File          string    `json:"file" yaml:"file"`
	CompositionID string    `json:"composition_id" yaml:"composition_id"`
	ContentHash   string    `json:"content_hash" yaml:"content_hash"`
	ManifestHash  string    `json:"manifest_hash" yaml:"manifest_hash"`
	Slots         []ir.Slot `json:"slots" yaml:"slots"`
	ToolVersion   string    `json:"tool_version" yaml:"tool_version"`
}

// ErrNotFound is returned by lookups that match no publication.
var ErrNotFound = errors.New("publication not found")

// RecordPublication appends p and returns its sequence number.
// p.Seq is ignored; an empty ToolVersion is recorded as ir.ToolVersion.
func (s *Store) RecordPublication(ctx context.Context, p Publication) (int64, error) {
	slots := p.Slots
	if slots == nil {
		slots = []ir.Slot{}
	}
	slotsJSON, err := ir.MarshalCanonical(slots)
	if err != nil {
		return 0, fmt.Errorf("record publication: marshal slots: %w", err)
	}
	version := p.ToolVersion
	if version == "" {
		version = ir.ToolVersion
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO publications
		(file, composition_id, content_hash, manifest_hash, slots, tool_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		p.File,
		p.CompositionID,
		p.ContentHash,
		p.ManifestHash,
		string(slotsJSON),
		version,
	)
	if err != nil {
		return 0, fmt.Errorf("record publication: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record publication: last insert id: %w", err)
	}
	return seq, nil
}

// ListPublications returns publications ordered by seq. An empty file
// returns every publication.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListPublications(ctx context.Context, file string) ([]Publication, error) {
	if file == "" {
		return s.queryPublications(ctx, "")
	}
	return s.queryPublications(ctx, "WHERE file = ?", file)
}

// ListByManifestHash returns every publication whose slot list hashes to
// hash, ordered by seq.
func (s *Store) ListByManifestHash(ctx context.Context, hash string) ([]Publication, error) {
	return s.queryPublications(ctx, "WHERE manifest_hash = ?", hash)
}

func (s *Store) queryPublications(ctx context.Context, where string, args ...any) ([]Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, file, composition_id, content_hash, manifest_hash, slots, tool_version
		FROM publications
		`+where+`
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}
	defer rows.Close()

	pubs := []Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return pubs, nil
}

// LatestForFile returns the most recent publication of file.
// Returns ErrNotFound if file was never published.
func (s *Store) LatestForFile(ctx context.Context, file string) (Publication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, file, composition_id, content_hash, manifest_hash, slots, tool_version
		FROM publications
		WHERE file = ?
		ORDER BY seq DESC
		LIMIT 1
	`, file)
	return scanOne(row)
}

// FindByCompositionID returns the latest publication that wrote id.
// A forced republish keeps the id of the first publish, so several rows
// may share one. Returns ErrNotFound if none did.
func (s *Store) FindByCompositionID(ctx context.Context, id string) (Publication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, file, composition_id, content_hash, manifest_hash, slots, tool_version
		FROM publications
		WHERE composition_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, id)
	return scanOne(row)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (Publication, error) {
	p, err := scanPublication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Publication{}, ErrNotFound
	}
	return p, err
}

func scanPublication(sc scanner) (Publication, error) {
	var p Publication
	var slotsJSON string
	err := sc.Scan(&p.Seq, &p.File, &p.CompositionID, &p.ContentHash, &p.ManifestHash, &slotsJSON, &p.ToolVersion)
	if err != nil {
		return Publication{}, fmt.Errorf("scan publication: %w", err)
	}
	if err := json.Unmarshal([]byte(slotsJSON), &p.Slots); err != nil {
		return Publication{}, fmt.Errorf("unmarshal slots for seq %d: %w", p.Seq, err)
	}
	return p, nil
}
