package embedding

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS vectors (
	word TEXT PRIMARY KEY,
	vec  BLOB NOT NULL
)`

// SQLiteStore keeps vectors in a single SQLite table
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path (":memory:" for a private in-memory
// database) and creates the vectors table when missing
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("path is required for sqlite embedding store")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite embedding store: %w", err)
	}
	// Every pooled connection to ":memory:" would see its own empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vectors table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Vector(term string) ([]float32, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT vec FROM vectors WHERE word = ?`, Normalize(term)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read vector %q: %w", term, err)
	}
	vec, err := Decode(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decode vector %q: %w", term, err)
	}
	return vec, true, nil
}

func (s *SQLiteStore) Put(term string, vec []float32) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO vectors (word, vec) VALUES (?, ?)`, Normalize(term), Encode(vec))
	if err != nil {
		return fmt.Errorf("write vector %q: %w", term, err)
	}
	return nil
}

// Len counts stored vectors
func (s *SQLiteStore) Len() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM vectors`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
