// Package journal keeps a history of program runs in a SQL database.
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusSyntax  Status = "syntax"
	StatusRuntime Status = "runtime"
)

var ErrUnsupportedDriver = errors.New("unsupported journal driver")

// Run is one journal row.
type Run struct {
	ID        int64
	Source    string // path of the program, "<stdin>" for the REPL
	Checksum  string // hex SHA-256 of the program text
	Status    Status
	ExitCode  int
	Output    string
	Error     string
	Line      int
	Column    int
	StartedAt time.Time
	Duration  time.Duration
}

// Checksum returns the hex SHA-256 of src.
func Checksum(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

const (
	columns = "source, checksum, status, exit_code, output, error, line, col, started_at, duration_ns"

	insertRun  = "INSERT INTO runs (" + columns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	recentRuns = "SELECT id, " + columns + " FROM runs ORDER BY id DESC LIMIT ?"

	// postgres has numbered placeholders and no LastInsertId
	insertRunPostgres  = "INSERT INTO runs (" + columns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id"
	recentRunsPostgres = "SELECT id, " + columns + " FROM runs ORDER BY id DESC LIMIT $1"
)

type dialect struct {
	createTable string
	insert      string
	recent      string
	returningID bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT    NOT NULL,
	checksum    TEXT    NOT NULL,
	status      TEXT    NOT NULL,
	exit_code   INTEGER NOT NULL,
	output      TEXT    NOT NULL,
	error       TEXT    NOT NULL,
	line        INTEGER NOT NULL,
	col         INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
)`,
		insert: insertRun,
		recent: recentRuns,
	},
	DriverMySQL: {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id          BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
	source      VARCHAR(1024) NOT NULL,
	checksum    CHAR(64)      NOT NULL,
	status      VARCHAR(16)   NOT NULL,
	exit_code   INT           NOT NULL,
	output      MEDIUMTEXT    NOT NULL,
	error       TEXT          NOT NULL,
	line        INT           NOT NULL,
	col         INT           NOT NULL,
	started_at  BIGINT        NOT NULL,
	duration_ns BIGINT        NOT NULL
)`,
		insert: insertRun,
		recent: recentRuns,
	},
	DriverPostgres: {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id          BIGSERIAL PRIMARY KEY,
	source      TEXT      NOT NULL,
	checksum    CHAR(64)  NOT NULL,
	status      TEXT      NOT NULL,
	exit_code   INTEGER   NOT NULL,
	output      TEXT      NOT NULL,
	error       TEXT      NOT NULL,
	line        INTEGER   NOT NULL,
	col         INTEGER   NOT NULL,
	started_at  BIGINT    NOT NULL,
	duration_ns BIGINT    NOT NULL
)`,
		insert:      insertRunPostgres,
		recent:      recentRunsPostgres,
		returningID: true,
	},
}

// Store writes and lists runs. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// Open connects to the database and creates the runs table when it is
// missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// every connection to ":memory:" is its own database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal table: %w", err)
	}

	log := slog.Default().With(slog.String("driver", driver))
	log.Debug("journal opened")
	return &Store{db: db, dialect: d, log: log}, nil
}

// openDB validates dsn for the driver before handing it to database/sql,
// which would otherwise only fail on first use.
func openDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverMySQL:
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
	case DriverPostgres:
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		return sql.OpenDB(connector), nil
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s journal: %w", driver, err)
	}
	return db, nil
}

// Record inserts run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	args := []any{run.Source, run.Checksum, string(run.Status), run.ExitCode, run.Output, run.Error,
		run.Line, run.Column, run.StartedAt.UnixNano(), int64(run.Duration)}

	var id int64
	var err error
	if s.dialect.returningID {
		err = s.db.QueryRowContext(ctx, s.dialect.insert, args...).Scan(&id)
	} else {
		var result sql.Result
		if result, err = s.db.ExecContext(ctx, s.dialect.insert, args...); err == nil {
			id, err = result.LastInsertId()
		}
	}
	if err != nil {
		s.log.Error("failed to record run", slog.Any("error", err))
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	s.log.Debug("run recorded", slog.Int64("id", id), slog.String("status", string(run.Status)))
	return id, nil
}

// Recent returns at most limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.recent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			status    string
			startedAt int64
			duration  int64
		)
		err := rows.Scan(&run.ID, &run.Source, &run.Checksum, &status, &run.ExitCode, &run.Output,
			&run.Error, &run.Line, &run.Column, &startedAt, &duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = Status(status)
		run.StartedAt = time.Unix(0, startedAt)
		run.Duration = time.Duration(duration)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// String renders run as one history line.
func (r Run) String() string {
	line := fmt.Sprintf("#%d %s %-7s exit=%d %s %s", r.ID, r.StartedAt.Format(time.RFC3339),
		r.Status, r.ExitCode, r.Duration.Round(time.Microsecond), r.Source)
	if r.Error != "" {
		line += fmt.Sprintf(" [%d:%d] %s", r.Line, r.Column, r.Error)
	}
	return line
}
