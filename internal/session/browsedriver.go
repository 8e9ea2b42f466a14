package session

import "context"

// NextPage is the decoded result of one BrowseNext round trip: the results
// of that batch, opaque to this package, and the continuation point for
// the next call, empty once the chain is exhausted.
type NextPage struct {
	Results           []any
	ContinuationPoint []byte
}

// BrowseNextFunc issues one BrowseNext call over whatever transport the
// caller has open and returns the decoded response.
type BrowseNextFunc func(ctx context.Context, cp []byte) (NextPage, error)

// DrainContinuations pops every continuation point cached by
// PushContinuation, FIFO, and calls next repeatedly on each until its
// chain reports no further continuation point. It stops at the first
// error next returns, leaving any continuation points not yet popped
// cached for a later call.
func (s *Session) DrainContinuations(ctx context.Context, next BrowseNextFunc) ([]NextPage, error) {
	var pages []NextPage
	for {
		entry, ok := s.PopContinuation()
		if !ok {
			return pages, nil
		}
		cp := entry.ContinuationPoint
		for len(cp) > 0 {
			page, err := next(ctx, cp)
			if err != nil {
				return pages, err
			}
			pages = append(pages, page)
			cp = page.ContinuationPoint
		}
	}
}
