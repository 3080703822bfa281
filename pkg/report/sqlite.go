//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"database/sql"
	"sync"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver
)

var logger = logging.GetLogger("tablevalidator.report")

const agent = "report"

const schema = `
CREATE TABLE IF NOT EXISTS validation_errors (
	run_id    TEXT NOT NULL,
	id        INTEGER NOT NULL,
	tbl       TEXT NOT NULL,
	cell      TEXT NOT NULL,
	level     TEXT NOT NULL,
	rule_id   TEXT NOT NULL,
	rule_name TEXT NOT NULL,
	value     TEXT NOT NULL,
	fix       TEXT NOT NULL,
	message   TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);

CREATE INDEX IF NOT EXISTS idx_validation_errors_tbl ON validation_errors(tbl);
`

const insert = `
INSERT INTO validation_errors (run_id, id, tbl, cell, level, rule_id, rule_name, value, fix, message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLiteFactory creates streams that insert records into a SQLite database.
type SQLiteFactory struct {
	path string
}

// SQLiteStream inserts every record into the validation_errors table.
// Records of several runs can share one database; they are told apart by
// run_id.
type SQLiteStream struct {
	db        *sql.DB
	stmt      *sql.Stmt
	closeOnce sync.Once
}

// NewSQLiteFactory creates a [Factory] for the database file at path.
func NewSQLiteFactory(path string) Factory {
	return &SQLiteFactory{path: path}
}

// NewStream opens the database and creates the schema if needed.
func (f *SQLiteFactory) NewStream() (Stream, error) {
	if f.path == "" {
		return nil, errors.New("db path cannot be empty")
	}

	db, err := sql.Open("sqlite", f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", f.path)
	}
	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	stmt, err := db.Prepare(insert)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to prepare statement")
	}

	logger.Debugf(agent, "NewStream", "writing validation errors to %s", f.path)

	return &SQLiteStream{db: db, stmt: stmt}, nil
}

// Send inserts one row.
func (s *SQLiteStream) Send(r *common.ValidationError) error {
	_, err := s.stmt.Exec(r.RunID, r.ID, r.Table, r.Cell, r.Level, r.RuleID, r.RuleName, r.Value, r.Fix, r.Message)
	return errors.Wrapf(err, "insert of record %d failed", r.ID)
}

// Close releases the statement and the database.
func (s *SQLiteStream) Close() {
	s.closeOnce.Do(func() {
		_ = s.stmt.Close()
		if err := s.db.Close(); err != nil {
			logger.Warnf(agent, "Close", "error closing database: %+v", err)
		}
	})
}
