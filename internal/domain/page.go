package domain

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset within an int32 for any allowed size.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

// Page is a 0-based pagination directive. Orders are sorted by order date,
// newest first, unless Ascending is set.
type Page struct {
	Number    int
	Size      int
	Ascending bool
}

func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return p.Number * p.Size
}
