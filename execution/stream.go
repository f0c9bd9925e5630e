package execution

import (
	"context"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
)

var ErrEndOfStream = errors.New("end of stream")

// Row maps column names to values.
type Row map[string]timelyfdw.Value

// RecordStream is a lazy, pull-based sequence of rows.
// Next returns ErrEndOfStream once the stream is exhausted.
// Close releases any underlying resource, may be called at any point and more than once.
type RecordStream interface {
	Next(ctx context.Context) (Row, error)
	Close() error
}

// ReadAll drains the stream and closes it.
func ReadAll(ctx context.Context, stream RecordStream) (out []Row, err error) {
	defer func() {
		if closeErr := stream.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "couldn't close record stream")
		}
	}()

	for {
		row, err := stream.Next(ctx)
		if err == ErrEndOfStream {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, row)
	}
}
