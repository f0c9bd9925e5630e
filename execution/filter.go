package execution

import (
	"context"

	"github.com/pkg/errors"
)

// FilteredStream yields only the rows of its source which satisfy every predicate.
// The source is closed as soon as it is exhausted or fails.
type FilteredStream struct {
	predicates []*Predicate
	source     RecordStream
	closed     bool
}

func NewFilteredStream(predicates []*Predicate, source RecordStream) *FilteredStream {
	return &FilteredStream{
		predicates: predicates,
		source:     source,
	}
}

func (stream *FilteredStream) Close() error {
	if stream.closed {
		return nil
	}
	stream.closed = true
	if err := stream.source.Close(); err != nil {
		return errors.Wrap(err, "couldn't close underlying stream")
	}

	return nil
}

func (stream *FilteredStream) Next(ctx context.Context) (Row, error) {
	if stream.closed {
		return nil, ErrEndOfStream
	}

	for {
		record, err := stream.source.Next(ctx)
		if err != nil {
			closeErr := stream.Close()
			if err == ErrEndOfStream {
				if closeErr != nil {
					return nil, closeErr
				}
				return nil, ErrEndOfStream
			}
			return nil, errors.Wrap(err, "couldn't get source record")
		}

		if stream.matches(record) {
			return record, nil
		}
	}
}

func (stream *FilteredStream) matches(row Row) bool {
	for _, pred := range stream.predicates {
		if !pred.Apply(row) {
			return false
		}
	}
	return true
}
