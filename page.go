package sqlpager

import "github.com/samber/lo"

// NumberedRow pairs a raw row with its global 1-based row number.
type NumberedRow struct {
	Row    Row
	Number int
}

// Page is a materialized feed result.
type Page struct {
	// Number is the page shown after the feed (never less than 1).
	Number int
	// Headers column names, or ["Result"] for effect statements.
	Headers []string
	Shape   ResultShape
	// Rows fed by the call. Empty when there was nothing to move to.
	Rows []NumberedRow
}

func (p *Page) Len() int {
	if p == nil {
		return 0
	}

	return len(p.Rows)
}

func (p *Page) IsEmpty() bool {
	return p.Len() == 0
}

// RowNumbers returns the global row numbers of the page in feed order.
func (p *Page) RowNumbers() []int {
	if p == nil {
		return nil
	}

	return lo.Map(p.Rows, func(item NumberedRow, _ int) int {
		return item.Number
	})
}

// Values returns raw rows of the page in feed order.
func (p *Page) Values() []Row {
	if p == nil {
		return nil
	}

	return lo.Map(p.Rows, func(item NumberedRow, _ int) Row {
		return item.Row
	})
}
