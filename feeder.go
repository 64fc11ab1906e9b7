package sqlpager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	successfullyExecutedMessage = "Successfully executed!"
	affectedRowsMessageFormat   = "Affected rows: %d"
)

// feeder serves one result shape. It is chosen once per execution.
type feeder interface {
	feed(ctx context.Context, p *QueryPaginator, direction Direction) ([]NumberedRow, error)
}

func feederFor(shape ResultShape) feeder {
	switch shape {
	case ShapeProjection:
		return projectionFeeder{}
	case ShapeEffect:
		return effectFeeder{}
	default:
		return nil
	}
}

// projectionFeeder pages through a result set.
type projectionFeeder struct{}

func (projectionFeeder) feed(ctx context.Context, p *QueryPaginator, direction Direction) ([]NumberedRow, error) {
	if direction.IsForward() {
		return p.advanceOneBatch(ctx)
	}

	// Page 1 has no predecessor.
	if p.pageCounter <= 1 {
		return nil, nil
	}

	target := p.pageCounter
	if err := p.execute(ctx); err != nil {
		return nil, err
	}

	skip := target - 2
	for range skip {
		if _, err := p.advanceOneBatch(ctx); err != nil {
			return nil, err
		}
	}

	if p.pageCounter < skip {
		p.logger.WithFields(logrus.Fields{
			"expected_pages": skip,
			"replayed_pages": p.pageCounter,
		}).Warn("result set shrank while replaying statement")
	}

	p.logger.WithFields(logrus.Fields{
		"from_page":       target,
		"discarded_pages": skip,
	}).Debug("previous page reconstructed")

	return p.advanceOneBatch(ctx)
}

// effectFeeder yields a single synthetic row describing the statement outcome
// on the first forward feed and nothing afterwards.
type effectFeeder struct{}

func (effectFeeder) feed(_ context.Context, p *QueryPaginator, direction Direction) ([]NumberedRow, error) {
	if !direction.IsForward() || p.fetched {
		return nil, nil
	}

	rowCount := p.cursor.RowCount()
	message := lo.Ternary(
		rowCount == RowCountUndefined,
		successfullyExecutedMessage,
		fmt.Sprintf(affectedRowsMessageFormat, rowCount),
	)

	return []NumberedRow{{Row: Row{message}, Number: 1}}, nil
}
