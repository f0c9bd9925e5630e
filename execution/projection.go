package execution

import (
	"context"

	"github.com/timelyfdw/timelyfdw"
)

// ProjectedStream restricts every row to exactly the given fields.
// Fields missing from a source row are filled with null.
type ProjectedStream struct {
	fields []string
	source RecordStream
}

func NewProjectedStream(fields []string, source RecordStream) *ProjectedStream {
	return &ProjectedStream{
		fields: fields,
		source: source,
	}
}

func (stream *ProjectedStream) Close() error {
	return stream.source.Close()
}

func (stream *ProjectedStream) Next(ctx context.Context) (Row, error) {
	record, err := stream.source.Next(ctx)
	if err != nil {
		return nil, err
	}

	out := make(Row, len(stream.fields))
	for _, field := range stream.fields {
		value, ok := record[field]
		if !ok {
			value = timelyfdw.NewNull()
		}
		out[field] = value
	}
	return out, nil
}
