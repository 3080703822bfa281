//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/manetu/tablevalidator/pkg/common"
)

// Options configures the JSON output.
type Options struct {
	// PrettyPrint enables indented multi-line JSON output.
	PrettyPrint bool
}

// IoWriterFactory creates [Stream] instances that write JSON to an [io.Writer].
type IoWriterFactory struct {
	writer  io.Writer
	options Options
}

// IoWriterStream writes each record as one JSON document followed by a
// newline.  Writes are serialised, so lines never interleave.
type IoWriterStream struct {
	mu      sync.Mutex
	writer  io.Writer
	options Options
}

// NewStdoutFactory creates a [Factory] that writes records to stdout.
func NewStdoutFactory() Factory {
	return NewIoWriterFactory(os.Stdout)
}

// NewIoWriterFactory creates a [Factory] that writes records to w.
func NewIoWriterFactory(w io.Writer) Factory {
	return NewIoWriterFactoryWithOptions(w, Options{})
}

// NewIoWriterFactoryWithOptions creates a [Factory] that writes records to w
// with the given options.
func NewIoWriterFactoryWithOptions(w io.Writer, opts Options) Factory {
	return &IoWriterFactory{
		writer:  w,
		options: opts,
	}
}

// NewStream creates a new [IoWriterStream] that writes to the configured writer.
func (f *IoWriterFactory) NewStream() (Stream, error) {
	return newStream(f.writer, f.options), nil
}

func newStream(w io.Writer, opts Options) *IoWriterStream {
	return &IoWriterStream{
		writer:  w,
		options: opts,
	}
}

// Send marshals the record to JSON and writes it out.
func (s *IoWriterStream) Send(record *common.ValidationError) error {
	var (
		output []byte
		err    error
	)
	if s.options.PrettyPrint {
		output, err = json.MarshalIndent(record, "", "  ")
	} else {
		output, err = json.Marshal(record)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintln(s.writer, string(output))
	return err
}

// Close is a no-op for IoWriterStream; the caller owns the writer.
func (s *IoWriterStream) Close() {}
