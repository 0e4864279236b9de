package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names the database holding article texts and run history. It also
// selects the migrations directory, migrations/<dialect>.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqlitePragmas let batch workers write cached texts while the history
// writer holds the database; run_rows references runs, so foreign keys are on.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// DetectDialect maps the configured database setting to a dialect: a
// postgres:// or postgresql:// URL selects PostgreSQL, anything else is a
// SQLite file path.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// OpenDB opens and pings the database named by dsn. PostgreSQL goes through
// the pgx stdlib driver; SQLite files get sqlitePragmas appended.
func OpenDB(dsn string) (*sql.DB, Dialect, error) {
	dialect := DetectDialect(dsn)

	driver, source := "sqlite", dsn
	if dialect == DialectPostgres {
		driver = "pgx"
	} else {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		source = dsn + sep + sqlitePragmas
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// Rebind numbers the ? placeholders of the store's queries for PostgreSQL.
// The queries hold no literal question marks, so every ? is a parameter.
func Rebind(dialect Dialect, query string) string {
	if dialect == DialectSQLite {
		return query
	}

	var out strings.Builder
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out.WriteByte(query[i])
			continue
		}
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
		n++
	}
	return out.String()
}
