package pagecache

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Config selects where pages are cached, a local sqlite file or a remote
// libsql database when Url is set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
	// MaxAgeSeconds expires cached pages, 0 keeps them forever.
	MaxAgeSeconds int `json:"max_age_seconds"`
}

func (c Config) Enabled() bool {
	return c.File != "" || c.Url != ""
}

// OpenDB opens the configured database and applies the schema.
func (c Config) OpenDB() (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case c.Url != "":
		values := url.Values{}
		if c.AuthToken != "" {
			values.Add("authToken", c.AuthToken)
		}
		db, err = sql.Open("libsql", c.Url+"?"+values.Encode())
	case c.File != "":
		db, err = openSqlite(c.File)
	default:
		return nil, fmt.Errorf("neither a cache file nor a cache url was specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}
	return db, nil
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
