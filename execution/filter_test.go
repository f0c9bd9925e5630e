package execution

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/physical"
)

type closeTrackingStream struct {
	RecordStream
	closed int
	err    error
	after  int
	pulled int
}

func (s *closeTrackingStream) Next(ctx context.Context) (Row, error) {
	if s.err != nil && s.pulled == s.after {
		return nil, s.err
	}
	s.pulled++
	return s.RecordStream.Next(ctx)
}

func (s *closeTrackingStream) Close() error {
	s.closed++
	return s.RecordStream.Close()
}

func testRows() []Row {
	return []Row{
		{"id": timelyfdw.NewInt(0), "name": timelyfdw.NewString("a")},
		{"id": timelyfdw.NewInt(1), "name": timelyfdw.NewString("b")},
		{"id": timelyfdw.NewInt(2), "name": timelyfdw.NewString("jim")},
	}
}

func TestFilteredStream(t *testing.T) {
	ctx := context.Background()
	pred, err := NewPredicate(physical.NewQualifier("id", physical.MoreThan, timelyfdw.NewInt(0)))
	require.NoError(t, err)

	source := &closeTrackingStream{RecordStream: NewInMemoryStream(testRows())}
	stream := NewProjectedStream([]string{"name"}, NewFilteredStream([]*Predicate{pred}, source))

	rows, err := ReadAll(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{"name": timelyfdw.NewString("b")},
		{"name": timelyfdw.NewString("jim")},
	}, rows)
	assert.Equal(t, 1, source.closed)
}

func TestFilteredStream_EarlyClose(t *testing.T) {
	ctx := context.Background()
	source := &closeTrackingStream{RecordStream: NewInMemoryStream(testRows())}
	stream := NewFilteredStream(nil, source)

	row, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, timelyfdw.NewString("a"), row["name"])

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	assert.Equal(t, 1, source.closed)

	_, err = stream.Next(ctx)
	assert.Equal(t, ErrEndOfStream, err)
}

func TestFilteredStream_SourceError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	source := &closeTrackingStream{RecordStream: NewInMemoryStream(testRows()), err: boom, after: 1}
	stream := NewFilteredStream(nil, source)

	_, err := stream.Next(ctx)
	require.NoError(t, err)
	_, err = stream.Next(ctx)
	require.Error(t, err)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Equal(t, 1, source.closed)
}

func TestProjectedStream_MissingField(t *testing.T) {
	ctx := context.Background()
	stream := NewProjectedStream([]string{"id", "score"}, NewInMemoryStream(testRows()[:1]))

	rows, err := ReadAll(ctx, stream)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"id": timelyfdw.NewInt(0), "score": timelyfdw.NewNull()}, rows[0])
}
