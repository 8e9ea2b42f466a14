package session

import (
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// SendRequest assigns the next monotonically increasing message_id,
// registers a pending-request slot, and returns both the id and a
// channel the caller can block on for the terminal Response.
func (s *Session) SendRequest() (uint64, <-chan Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return 0, nil, uaerrors.Newf(uaerrors.BadInvalidArgument, "cannot send request from state %s", s.state)
	}
	s.nextMessageID++
	id := s.nextMessageID
	now := time.Now()
	done := make(chan Response, 1)
	s.pending[id] = &pendingRequest{
		issuedAt: now,
		deadline: now.Add(s.requestTimeout),
		done:     done,
	}
	return id, done, nil
}

// Complete fulfils a pending request with a terminal Response. It is a
// no-op if the message_id is unknown (already timed out or drained by
// Disconnect).
func (s *Session) Complete(messageID uint64, result any, err error) {
	s.mu.Lock()
	p, ok := s.pending[messageID]
	if ok {
		delete(s.pending, messageID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	p.done <- Response{MessageID: messageID, Result: result, Err: err}
	close(p.done)
}

// ExpirePending completes every pending request whose deadline has
// passed with BadTimeout, leaving the transport handle open.
func (s *Session) ExpirePending(now time.Time) {
	s.mu.Lock()
	var expired []*pendingRequest
	var expiredIDs []uint64
	for id, p := range s.pending {
		if !now.Before(p.deadline) {
			expired = append(expired, p)
			expiredIDs = append(expiredIDs, id)
		}
	}
	for _, id := range expiredIDs {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for i, p := range expired {
		p.done <- Response{MessageID: expiredIDs[i], Err: uaerrors.New(uaerrors.BadTimeout, "request timed out")}
		close(p.done)
	}
}

// PendingCount reports the number of outstanding requests, used by
// tests and diagnostics.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PushContinuation caches a continuation point, rejecting with
// BadResourceUnavailable once the server-advertised
// MaxBrowseContinuationPoints cap is reached.
func (s *Session) PushContinuation(entry ContinuationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.continuations) >= s.maxContinuations {
		return uaerrors.New(uaerrors.BadResourceUnavailable, "continuation point cache is full")
	}
	s.continuations = append(s.continuations, entry)
	return nil
}

// PopContinuation consumes the oldest cached continuation point, FIFO
//. It
// reports ok=false when the cache is empty.
func (s *Session) PopContinuation() (ContinuationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.continuations) == 0 {
		return ContinuationEntry{}, false
	}
	entry := s.continuations[0]
	s.continuations = s.continuations[1:]
	return entry, true
}

// ContinuationCount reports the number of cached continuation points.
func (s *Session) ContinuationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.continuations)
}
