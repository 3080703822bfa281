//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package report provides interfaces and implementations for delivering the
// records produced by a validation run.
//
// Every failed rule produces one [common.ValidationError].  The validator
// sends each record to a [Stream] as soon as its table has been walked, in
// id order, in addition to returning the full list from Validate.
//
// # Built-in Implementations
//
//   - [NewStdoutFactory]: JSON lines on stdout
//   - [NewIoWriterFactory]: JSON lines on any io.Writer
//   - [NewTSVFactory]: the tabular report with its header row
//   - [NewSQLiteFactory]: rows in the validation_errors table of a SQLite file
//   - [NewNullFactory]: discards all records
//
// [FactoryForPath] picks one of these from a file extension.
package report

import (
	"github.com/manetu/tablevalidator/pkg/common"
)

// Factory creates report [Stream] instances.
//
// Early initialization (validating arguments) happens during factory
// construction.  Late initialization (opening files or connections) happens
// in [NewStream].
type Factory interface {
	// NewStream creates a new report stream ready to receive records.
	NewStream() (Stream, error)
}

// Stream receives validation records.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Stream interface {
	// Send delivers a record.  Send does not modify the record.
	Send(record *common.ValidationError) error

	// Close flushes buffered records and releases resources.  The stream must
	// not be used afterwards.
	Close()
}
