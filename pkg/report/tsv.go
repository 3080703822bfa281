//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"encoding/csv"
	"io"
	"sync"

	"github.com/manetu/tablevalidator/pkg/common"
)

// TSVFactory creates streams that write the tab-separated report.
type TSVFactory struct {
	writer io.Writer
}

// TSVStream writes common.ReportHeader before the first record, then one row
// per record.
type TSVStream struct {
	mu     sync.Mutex
	out    *csv.Writer
	header bool
}

// NewTSVFactory creates a [Factory] writing the tabular report to w.
func NewTSVFactory(w io.Writer) Factory {
	return &TSVFactory{writer: w}
}

// NewStream creates a new TSVStream.
func (f *TSVFactory) NewStream() (Stream, error) {
	out := csv.NewWriter(f.writer)
	out.Comma = '\t'
	return &TSVStream{out: out}, nil
}

func (s *TSVStream) writeHeader() error {
	if s.header {
		return nil
	}
	s.header = true
	return s.out.Write(common.ReportHeader)
}

// Send writes one row.
func (s *TSVStream) Send(record *common.ValidationError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeHeader(); err != nil {
		return err
	}
	if err := s.out.Write(record.Row()); err != nil {
		return err
	}
	s.out.Flush()
	return s.out.Error()
}

// Close writes the header if nothing was sent, so an empty report still
// carries it, and flushes the writer.
func (s *TSVStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeHeader(); err != nil {
		logger.Warnf(agent, "Close", "could not write report header: %+v", err)
	}
	s.out.Flush()
}
