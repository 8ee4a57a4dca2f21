// Package storage persists site profiles, generated document artifacts
// and the generation accounting log in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"rechtsdoc/internal/profile"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *sql.DB
}

// DocumentRecord is one persisted generation artifact. Version, ID and
// timestamps are assigned here, not by the pipeline.
type DocumentRecord struct {
	ID          string          `json:"id"`
	ProfileID   string          `json:"profileId"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Version     int             `json:"version"`
	Content     json.RawMessage `json:"content"`
	HTMLContent string          `json:"htmlContent"`
	TextContent string          `json:"textContent"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// GenerationLogEntry records one generation attempt for accounting.
type GenerationLogEntry struct {
	ProfileID    string
	DocumentType string
	Model        string
	TokensUsed   int
	Status       string
	Error        string
}

// NewStore creates or opens a SQLite database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS site_profiles (
			id TEXT PRIMARY KEY,
			name TEXT,
			data JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			version INTEGER NOT NULL,
			content JSON NOT NULL,
			html_content TEXT NOT NULL,
			text_content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_profile ON documents(profile_id, type)`,
		`CREATE TABLE IF NOT EXISTS generation_log (
			id TEXT PRIMARY KEY,
			profile_id TEXT,
			document_type TEXT NOT NULL,
			model TEXT,
			tokens_used INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveProfile inserts or replaces a profile. A missing ID is assigned.
func (s *Store) SaveProfile(ctx context.Context, p *profile.SiteProfile) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO site_profiles (id, name, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Name, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to save profile: %w", err)
	}
	return p.ID, nil
}

// GetProfile loads a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*profile.SiteProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM site_profiles WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	p, err := profile.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("stored profile %s is invalid: %w", id, err)
	}
	p.ID = id
	return p, nil
}

// PatchProfile applies a shallow-merge patch to a stored profile and
// persists the result. Nested flag maps keep unpatched siblings.
func (s *Store) PatchProfile(ctx context.Context, id string, patch map[string]any) (*profile.SiteProfile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyPatch(patch); err != nil {
		return nil, err
	}
	p.ID = id
	if _, err := s.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles returns all stored profiles, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]*profile.SiteProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM site_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*profile.SiteProfile
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		p, err := profile.Parse([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("stored profile %s is invalid: %w", id, err)
		}
		p.ID = id
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// SaveDocument persists a generation artifact, assigning its ID and the
// next version for the (profile, type) pair. Versions start at 1.
func (s *Store) SaveDocument(ctx context.Context, rec *DocumentRecord) (*DocumentRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	var maxVersion sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM documents WHERE profile_id = ? AND type = ?`,
		rec.ProfileID, rec.Type).Scan(&maxVersion)
	if err != nil {
		return nil, err
	}
	rec.Version = int(maxVersion.Int64) + 1
	rec.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, profile_id, type, title, version, content, html_content, text_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProfileID, rec.Type, rec.Title, rec.Version,
		string(rec.Content), rec.HTMLContent, rec.TextContent, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return rec, nil
}

// GetDocument loads one artifact by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, type, title, version, content, html_content, text_content, created_at
		FROM documents WHERE id = ?`, id)
	rec, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, err
	}
	return rec, nil
}

// ListDocuments returns the artifacts of one profile, newest first.
func (s *Store) ListDocuments(ctx context.Context, profileID string) ([]*DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, type, title, version, content, html_content, text_content, created_at
		FROM documents WHERE profile_id = ? ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*DocumentRecord
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var rec DocumentRecord
	var content string
	if err := row.Scan(&rec.ID, &rec.ProfileID, &rec.Type, &rec.Title, &rec.Version,
		&content, &rec.HTMLContent, &rec.TextContent, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Content = json.RawMessage(content)
	return &rec, nil
}

// LogGeneration appends one attempt to the generation log.
func (s *Store) LogGeneration(ctx context.Context, entry GenerationLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_log (id, profile_id, document_type, model, tokens_used, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), entry.ProfileID, entry.DocumentType, entry.Model,
		entry.TokensUsed, entry.Status, entry.Error)
	if err != nil {
		return fmt.Errorf("failed to log generation: %w", err)
	}
	return nil
}
