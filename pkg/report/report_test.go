//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id int) *common.ValidationError {
	return &common.ValidationError{
		ID:       id,
		RunID:    "run-1",
		Table:    "terms.tsv",
		Cell:     "C4",
		Level:    common.LevelError,
		RuleID:   "terms!C2",
		RuleName: "superclass-of",
		Value:    "heart",
		Message:  `Validation failed for rule: "heart superclass-of 'liver'".`,
	}
}

func TestIoWriterStream_Send(t *testing.T) {
	buf := &bytes.Buffer{}
	stream, err := NewIoWriterFactory(buf).NewStream()
	require.NoError(t, err)
	assert.IsType(t, &IoWriterStream{}, stream)

	require.NoError(t, stream.Send(record(1)))
	require.NoError(t, stream.Send(record(2)))
	stream.Close()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var decoded common.ValidationError
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, *record(2), decoded)
	assert.Contains(t, lines[0], `"rule_id":"terms!C2"`)
}

func TestIoWriterStream_PrettyPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	stream := newStream(buf, Options{PrettyPrint: true})

	require.NoError(t, stream.Send(record(1)))
	assert.Contains(t, buf.String(), "\n  ")

	var decoded common.ValidationError
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.ID)
}

func TestStdoutFactory(t *testing.T) {
	f := NewStdoutFactory()
	assert.IsType(t, &IoWriterFactory{}, f)
}

func TestTSVStream(t *testing.T) {
	buf := &bytes.Buffer{}
	stream, err := NewTSVFactory(buf).NewStream()
	require.NoError(t, err)

	require.NoError(t, stream.Send(record(1)))
	stream.Close()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID\ttable\tcell\tlevel\trule ID\trule name\tvalue\tfix", lines[0])
	assert.Equal(t, "1\tterms.tsv\tC4\terror\tterms!C2\tsuperclass-of\theart\t", lines[1])
}

func TestTSVStream_EmptyReportHasHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	stream, err := NewTSVFactory(buf).NewStream()
	require.NoError(t, err)
	stream.Close()

	assert.Equal(t, "ID\ttable\tcell\tlevel\trule ID\trule name\tvalue\tfix\n", buf.String())
}

func TestNullStream(t *testing.T) {
	stream, err := NewNullFactory().NewStream()
	require.NoError(t, err)
	assert.NoError(t, stream.Send(record(1)))
	assert.NotPanics(t, func() {
		stream.Close()
		stream.Close()
	})
}

func TestSQLiteStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.db")

	stream, err := NewSQLiteFactory(path).NewStream()
	require.NoError(t, err)
	require.NoError(t, stream.Send(record(1)))
	require.NoError(t, stream.Send(record(2)))
	stream.Close()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM validation_errors WHERE run_id = ?", "run-1").Scan(&count))
	assert.Equal(t, 2, count)

	var cell, message string
	require.NoError(t, db.QueryRow("SELECT cell, message FROM validation_errors WHERE id = 2").Scan(&cell, &message))
	assert.Equal(t, "C4", cell)
	assert.Equal(t, record(2).Message, message)
}

func TestSQLiteStream_DuplicateRecord(t *testing.T) {
	stream, err := NewSQLiteFactory(filepath.Join(t.TempDir(), "errors.db")).NewStream()
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, stream.Send(record(1)))
	assert.Error(t, stream.Send(record(1)))
}

func TestSQLiteFactory_EmptyPath(t *testing.T) {
	_, err := NewSQLiteFactory("").NewStream()
	assert.Error(t, err)
}

func TestFactoryForPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		expected interface{}
		wantErr  bool
	}{
		{"stdout", "-", &IoWriterFactory{}, false},
		{"tsv", filepath.Join(dir, "out.tsv"), &FileFactory{}, false},
		{"jsonl", filepath.Join(dir, "out.jsonl"), &FileFactory{}, false},
		{"sqlite", filepath.Join(dir, "out.db"), &SQLiteFactory{}, false},
		{"unknown", filepath.Join(dir, "out.xlsx"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FactoryForPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, f)
		})
	}
}

func TestFileFactory_WritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	f, err := FactoryForPath(path)
	require.NoError(t, err)

	stream, err := f.NewStream()
	require.NoError(t, err)
	require.NoError(t, stream.Send(record(7)))
	stream.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "7\tterms.tsv\tC4")
}

func TestFileFactory_BadDirectory(t *testing.T) {
	f, err := FactoryForPath(filepath.Join(t.TempDir(), "missing", "out.tsv"))
	require.NoError(t, err)
	_, err = f.NewStream()
	assert.Error(t, err)
}
