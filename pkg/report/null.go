//
//  Copyright © Manetu Inc. All rights reserved.
//

package report

import (
	"github.com/manetu/tablevalidator/pkg/common"
)

// NullFactory is a factory for NullStream.
type NullFactory struct {
}

// NullStream implements the Stream interface but drops all records on the floor.
type NullStream struct {
}

// NewNullFactory creates a new factory for NullStream.
func NewNullFactory() Factory {
	return &NullFactory{}
}

// NewStream creates a new NullStream to satisfy the Factory interface.
func (f *NullFactory) NewStream() (Stream, error) {
	return &NullStream{}, nil
}

// Send drops the record
func (s *NullStream) Send(record *common.ValidationError) error {
	return nil
}

// Close is a no-op for NullStream
func (s *NullStream) Close() {}
