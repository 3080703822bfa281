//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileFactory opens a file when the stream is created and closes it with the
// stream.
type FileFactory struct {
	path string
	wrap func(io.Writer) Factory
}

type fileStream struct {
	Stream
	file *os.File
}

func (s *fileStream) Close() {
	s.Stream.Close()
	if err := s.file.Close(); err != nil {
		logger.Warnf(agent, "Close", "error closing %s: %+v", s.file.Name(), err)
	}
}

// NewStream creates the file and the wrapped stream.
func (f *FileFactory) NewStream() (Stream, error) {
	file, err := os.Create(filepath.Clean(f.path))
	if err != nil {
		return nil, errors.Wrapf(err, "could not create report %s", f.path)
	}
	inner, err := f.wrap(file).NewStream()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileStream{Stream: inner, file: file}, nil
}

// FactoryForPath chooses a sink from the extension of path: ".tsv" and ".tab"
// write the tabular report, ".json" and ".jsonl" write JSON lines, ".db",
// ".sqlite" and ".sqlite3" write to SQLite.  "-" writes JSON lines to stdout.
func FactoryForPath(path string) (Factory, error) {
	if path == "-" {
		return NewStdoutFactory(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return &FileFactory{path: path, wrap: NewTSVFactory}, nil
	case ".json", ".jsonl":
		return &FileFactory{path: path, wrap: NewIoWriterFactory}, nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteFactory(path), nil
	}
	return nil, errors.Errorf("unsupported report format for %s: use .tsv, .jsonl or .db", path)
}
