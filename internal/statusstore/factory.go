package statusstore

import (
	"fmt"
	"net/url"
	"strings"
)

// Open selects a backend from a DSN:
//
//	memory:                      in-memory store
//	postgres://user@host/db      shared Postgres store
//	file:/path/to/statuses.db    SQLite store
//	/path/to/statuses.db         SQLite store (bare path)
//
// An empty DSN is an error; the caller decides the default location.
func Open(dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty status store dsn")
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		// Not a URL at all: treat as a bare sqlite path.
		return OpenSQLite(dsn)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "memory", "mem":
		return NewMemoryStore(), nil
	case "postgres", "postgresql":
		return OpenPostgres(dsn), nil
	case "", "file":
		path := parsed.Opaque
		if path == "" {
			path = parsed.Path
		}
		if path == "" {
			path = dsn
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported status store scheme %q", parsed.Scheme)
	}
}
