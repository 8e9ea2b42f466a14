// Package session implements the client session: one
// logical connection to a remote OPC UA endpoint, its state machine, its
// pending-request table, and its continuation-point cache. The session
// holds no transport handle of its own.
package session

import (
	"sync"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// State is one node of the session state machine.
type State uint8

const (
	StateIdle State = iota
	StateDiscovering
	StateConnecting
	StateActive
	StateFaulted
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDiscovering:
		return "Discovering"
	case StateConnecting:
		return "Connecting"
	case StateActive:
		return "Active"
	case StateFaulted:
		return "Faulted"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// DefaultRequestTimeout is used when no request timeout is configured.
const DefaultRequestTimeout = 60 * time.Second

// pendingRequest is one outstanding slot in the pending-request table.
type pendingRequest struct {
	issuedAt time.Time
	deadline time.Time
	done     chan Response
}

// Response is delivered to the caller of SendRequest: exactly one of
// Result or Err is meaningful.
type Response struct {
	MessageID uint64
	Result    any
	Err       error
}

// ContinuationEntry is one cached continuation point.
type ContinuationEntry struct {
	ContinuationPoint []byte
	Source            any // the browse source, a ua.NodeID, held untyped
	RequestID         uint64
	Expiry            time.Time
}

// Session is one logical connection to a remote endpoint.
type Session struct {
	mu    sync.Mutex
	state State

	endpointURI    string
	requestTimeout time.Duration

	nextMessageID uint64
	pending       map[uint64]*pendingRequest

	continuations []ContinuationEntry
	maxContinuations int
}

// New constructs an idle session for the given endpoint URI.
func New(endpointURI string, requestTimeout time.Duration, maxContinuations int) *Session {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if maxContinuations <= 0 {
		maxContinuations = 100
	}
	return &Session{
		state:            StateIdle,
		endpointURI:      endpointURI,
		requestTimeout:   requestTimeout,
		pending:          make(map[uint64]*pendingRequest),
		maxContinuations: maxContinuations,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EndpointURI returns the endpoint this session is bound to.
func (s *Session) EndpointURI() string { return s.endpointURI }

func (s *Session) transition(to State) {
	s.state = to
}

// BeginDiscovery implements Idle -> Discovering.
func (s *Session) BeginDiscovery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return uaerrors.Newf(uaerrors.BadInvalidArgument, "cannot discover from state %s", s.state)
	}
	s.transition(StateDiscovering)
	return nil
}

// BeginConnecting implements Discovering -> Connecting.
func (s *Session) BeginConnecting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDiscovering {
		return uaerrors.Newf(uaerrors.BadInvalidArgument, "cannot connect from state %s", s.state)
	}
	s.transition(StateConnecting)
	return nil
}

// Activate implements Connecting -> Active.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		return uaerrors.Newf(uaerrors.BadInvalidArgument, "cannot activate from state %s", s.state)
	}
	s.transition(StateActive)
	return nil
}

// Fault moves the session to Faulted on a transport error, from any state
// other than Closing or Closed.
// Faulted retains pending requests so the application can drain errors.
func (s *Session) Fault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed || s.state == StateClosing {
		return
	}
	s.transition(StateFaulted)
}

// Disconnect moves the session to Closing, completes every pending request
// with BadSessionClosed, then to Closed.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.transition(StateClosing)
	pending := s.pending
	s.pending = make(map[uint64]*pendingRequest)
	s.continuations = nil
	s.mu.Unlock()

	for id, p := range pending {
		p.done <- Response{MessageID: id, Err: uaerrors.New(uaerrors.BadSessionClosed, "session disconnected")}
		close(p.done)
	}

	s.mu.Lock()
	s.transition(StateClosed)
	s.mu.Unlock()
}
