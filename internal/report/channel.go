//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package report holds a channel-backed report stream for tests.
package report

import (
	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/manetu/tablevalidator/pkg/report"
)

// ChannelFactory factory for ChannelStream
type ChannelFactory struct {
	ch chan *common.ValidationError
}

// ChannelStream implements the Stream interface by writing records to a channel.
type ChannelStream struct {
	ch chan *common.ValidationError
}

// NewChannelFactory creates a Factory whose streams deliver records to ch.
func NewChannelFactory(ch chan *common.ValidationError) report.Factory {
	return &ChannelFactory{ch: ch}
}

// NewStream creates a new Stream to satisfy the Factory interface.
func (f *ChannelFactory) NewStream() (report.Stream, error) {
	return &ChannelStream{ch: f.ch}, nil
}

// Send delivers the record to the channel.
func (s *ChannelStream) Send(m *common.ValidationError) error {
	s.ch <- m

	return nil
}

// Close closes the underlying channel.
func (s *ChannelStream) Close() {
	if s.ch != nil {
		close(s.ch)
	}
}
