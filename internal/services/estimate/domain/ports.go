package domain

import "context"

// QuotePort produces audit quotes.
// Quote is total: it never returns an error for estimation backend
// faults, only for invalid input.
type QuotePort interface {
	Quote(ctx context.Context, in QuoteInput) (Quote, error)
}
