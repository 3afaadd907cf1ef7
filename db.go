package anycrc

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ManifestDB is a sqlite-backed store of file checksums keyed by path and
// algorithm name.
type ManifestDB struct {
	db *sql.DB
}

// NewManifestDB opens, and creates if necessary, the manifest database at
// file.
func NewManifestDB(file string) (*ManifestDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS checksum (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL, algorithm TEXT NOT NULL, crc TEXT NOT NULL, UNIQUE(path, algorithm))"); err != nil {
		return nil, err
	}

	return &ManifestDB{
		db: db,
	}, nil
}

func (db *ManifestDB) Close() error {
	return db.db.Close()
}

// Put records the checksum for path under the given algorithm, replacing any
// previous value.
func (db *ManifestDB) Put(path, algorithm, crc string) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO checksum (path, algorithm, crc) VALUES (?, ?, ?)", path, algorithm, crc); err != nil {
		return err
	}
	return nil
}

// Get returns the recorded checksum for path under the given algorithm, or
// the empty string if none has been recorded.
func (db *ManifestDB) Get(path, algorithm string) (string, error) {
	var crc string
	switch err := db.db.QueryRow("SELECT crc FROM checksum WHERE path = ? AND algorithm = ?", path, algorithm).Scan(&crc); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return crc, nil
	default:
		return "", err
	}
}
