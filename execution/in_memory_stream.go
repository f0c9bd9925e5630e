package execution

import (
	"context"
)

type InMemoryStream struct {
	data  []Row
	index int
}

func NewInMemoryStream(data []Row) *InMemoryStream {
	return &InMemoryStream{
		data:  data,
		index: 0,
	}
}

func (ims *InMemoryStream) Close() error {
	ims.index = len(ims.data)
	return nil
}

func (ims *InMemoryStream) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ims.index >= len(ims.data) {
		return nil, ErrEndOfStream
	}

	recordToReturn := ims.data[ims.index]
	ims.index++

	return recordToReturn, nil
}
