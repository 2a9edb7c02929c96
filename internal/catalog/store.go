package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// Store persists index snapshots across process restarts. It plays the
// role session storage played for the browser build: one opaque payload
// per key, replaced wholesale on every rebuild. Payloads are
// zstd-compressed before hitting disk.
type Store struct {
	conn    *sql.DB
	path    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS index_snapshots (
	key       TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	saved_at  INTEGER NOT NULL
);
`

// NewStore opens (or creates) the snapshot database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(storeSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize snapshot schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Store{conn: conn, path: path, encoder: encoder, decoder: decoder}, nil
}

// Load returns the decompressed snapshot payload for key.
// A missing row is reported as (nil, false, nil); a row that fails to
// decompress is reported as corrupt via a non-nil error so the caller
// can discard it and rebuild.
func (s *Store) Load(key string) ([]byte, bool, error) {
	var compressed []byte
	err := s.conn.QueryRow(`SELECT payload FROM index_snapshots WHERE key = ?`, key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %q: %w", key, err)
	}

	payload, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress snapshot %q: %w", key, err)
	}
	return payload, true, nil
}

// Save compresses and stores the payload under key, replacing any
// previous snapshot atomically.
func (s *Store) Save(key string, payload []byte) error {
	compressed := s.encoder.EncodeAll(payload, nil)

	_, err := s.conn.Exec(
		`INSERT INTO index_snapshots (key, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		key, compressed, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot stored under key, if any.
func (s *Store) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM index_snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection and compression resources.
func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
