// Package track implements real-time tracking of a single in-flight
// delivery order: a STOMP-over-WebSocket push subscription, a workflow
// state machine that never regresses visible progress, and the merge
// paths that fold fresh snapshots and push updates into one consistent
// order view.
package track

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordertrack/internal/metrics"
	"ordertrack/internal/model"
	"ordertrack/internal/stomp"
	"ordertrack/internal/store"
)

// DefaultReconnectDelay is the fixed pause before a reconnect attempt.
const DefaultReconnectDelay = 5 * time.Second

// Options configures a Session.
type Options struct {
	// BaseURL is the REST base URL; the push endpoint is derived from it.
	BaseURL string
	// Scope keys the persisted active order id (e.g. a user id).
	Scope string
	// ReconnectDelay overrides DefaultReconnectDelay when > 0.
	ReconnectDelay time.Duration
	Store          store.Store
	Broker         EventBroker
}

// Session is the public entry point for order tracking. It owns the
// current snapshot exclusively; the connection actor only submits
// candidate updates through the merge paths. At most one socket and one
// active order id exist at a time.
type Session struct {
	opts     Options
	endpoint string
	host     string

	mu       sync.Mutex
	token    string
	activeID int64
	snapshot *model.OrderSnapshot
	lastPush *model.PushUpdate
	state    model.ConnState
	conn     *connector
	closed   bool

	// persistence runs on one worker so saves and clears apply in the
	// order the session issued them
	persist chan persistReq
}

type persistReq struct {
	id    int64
	clear bool
}

func NewSession(opts Options) *Session {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Scope == "" {
		opts.Scope = "default"
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Broker == nil {
		opts.Broker = NewBroker()
	}
	endpoint, host := stomp.PushEndpoint(opts.BaseURL)
	s := &Session{opts: opts, endpoint: endpoint, host: host, state: model.ConnIdle, persist: make(chan persistReq, 16)}
	go s.persistLoop()
	return s
}

func (s *Session) persistLoop() {
	for req := range s.persist {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		var err error
		if req.clear {
			err = s.opts.Store.ClearActiveOrderID(ctx, s.opts.Scope)
		} else {
			err = s.opts.Store.SaveActiveOrderID(ctx, s.opts.Scope, req.id)
		}
		cancel()
		if err != nil {
			log.Printf("tracker: persist active order id: %v", err)
		}
	}
}

// SetCredential supplies or clears the bearer token for the push
// subscription. Clearing it tears the connection down.
func (s *Session) SetCredential(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		return
	}
	s.token = token
	s.reconcileLocked()
}

// Restore loads a previously persisted active order id. Load failures
// are treated as "no stored id"; pushes for a restored id synthesize a
// minimal snapshot until the caller re-hydrates from REST.
func (s *Session) Restore(ctx context.Context) {
	id, err := s.opts.Store.LoadActiveOrderID(ctx, s.opts.Scope)
	if err != nil {
		if err != store.ErrNotFound {
			log.Printf("tracker: load active order id: %v", err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == 0 && id > 0 {
		s.activeID = id
		s.reconcileLocked()
	}
}

// BeginTracking replaces the held snapshot wholesale: workflow reset,
// any stale push update cleared, the order id persisted as active.
func (s *Session) BeginTracking(snap model.OrderSnapshot) {
	if snap.OrderID <= 0 {
		log.Printf("tracker: begin tracking: missing or invalid order id, ignoring")
		return
	}
	merged := applyFreshSnapshot(snap, "", nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &merged
	s.lastPush = nil
	s.activeID = snap.OrderID
	s.persistLocked(snap.OrderID)
	metrics.Merges.WithLabelValues("begin").Inc()
	s.publishLocked(merged)
	if merged.Status.Terminal() {
		s.clearActiveLocked()
		return
	}
	s.reconcileLocked()
}

// HydrateTracking updates the held snapshot in place: when the order id
// matches, sub-records merge field-by-field (incoming wins, previous
// fills gaps) and completed workflow steps are preserved.
func (s *Session) HydrateTracking(snap model.OrderSnapshot) {
	if snap.OrderID <= 0 {
		log.Printf("tracker: hydrate tracking: missing or invalid order id, ignoring")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var prevStatus model.OrderStatus
	var prevWorkflow []model.WorkflowStep
	sameOrder := s.snapshot != nil && s.snapshot.OrderID == snap.OrderID
	if sameOrder {
		prevStatus = s.snapshot.Status
		prevWorkflow = s.snapshot.Workflow
	}
	merged := applyFreshSnapshot(snap, prevStatus, prevWorkflow)
	if sameOrder {
		merged = mergeSubRecords(*s.snapshot, merged)
	}
	if s.lastPush != nil && s.lastPush.OrderID != snap.OrderID {
		s.lastPush = nil
	}
	s.snapshot = &merged
	s.activeID = snap.OrderID
	s.persistLocked(snap.OrderID)
	metrics.Merges.WithLabelValues("hydrate").Inc()
	s.publishLocked(merged)
	if merged.Status.Terminal() {
		s.clearActiveLocked()
		return
	}
	s.reconcileLocked()
}

// StopTracking clears the snapshot, the last push update and the active
// order id, tearing down any open connection.
func (s *Session) StopTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.lastPush = nil
	s.clearActiveLocked()
}

// Close tears the session down and waits for the connection actor to
// exit. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	cur := s.conn
	s.conn = nil
	s.setStateLocked(model.ConnIdle)
	if !already {
		close(s.persist)
	}
	s.mu.Unlock()
	if cur != nil {
		cur.requestStop()
		cur.wait()
	}
}

// Snapshot returns a copy of the current snapshot, or nil.
func (s *Session) Snapshot() *model.OrderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	cp := *s.snapshot
	return &cp
}

// LastPush returns a copy of the most recent push update for the active
// order, or nil.
func (s *Session) LastPush() *model.PushUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastPush == nil {
		return nil
	}
	cp := *s.lastPush
	return &cp
}

// ActiveOrderID returns the tracked order id, 0 when none.
func (s *Session) ActiveOrderID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// State returns the current connection state.
func (s *Session) State() model.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// handleFrame runs on the connection actor for each MESSAGE frame.
// Malformed bodies are dropped; mismatched order ids are ignored.
func (s *Session) handleFrame(c *connector, f stomp.Frame) {
	var upd model.PushUpdate
	if err := json.Unmarshal([]byte(f.Body), &upd); err != nil {
		metrics.DecodeErrors.Inc()
		log.Printf("tracker: dropping malformed MESSAGE body: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != c || upd.OrderID != s.activeID {
		return
	}
	merged := applyPushUpdate(s.snapshot, upd)
	s.snapshot = &merged
	s.lastPush = &upd
	metrics.Merges.WithLabelValues("push").Inc()
	s.publishLocked(merged)
	if merged.Status.Terminal() {
		s.clearActiveLocked()
	}
}

// handleConnState runs on the connection actor; state from a replaced
// connector is dropped.
func (s *Session) handleConnState(c *connector, st model.ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != c {
		return
	}
	s.setStateLocked(st)
}

func (s *Session) setStateLocked(st model.ConnState) {
	if s.state == st {
		return
	}
	s.state = st
	metrics.SetConnState(string(st))
	log.Printf("tracker: connection %s", st)
}

// reconcileLocked is the single effect pass mapping (credential, active
// order id) to the connection lifecycle. A replaced connection is fully
// torn down before its successor may open.
func (s *Session) reconcileLocked() {
	want := s.activeID > 0 && s.token != "" && !s.closed
	wantID, wantToken := s.activeID, s.token
	if cur := s.conn; cur != nil {
		if want && cur.orderID == wantID && cur.token == wantToken {
			return
		}
		cur.requestStop()
		s.conn = nil
		if !want {
			s.setStateLocked(model.ConnIdle)
		}
		go func() {
			cur.wait()
			s.mu.Lock()
			s.reconcileLocked()
			s.mu.Unlock()
		}()
		return
	}
	if !want {
		s.setStateLocked(model.ConnIdle)
		return
	}
	c := newConnector(s.endpoint, s.host, wantToken, wantID, s.opts.ReconnectDelay)
	c.onFrame = s.handleFrame
	c.onState = s.handleConnState
	s.conn = c
	c.start()
}

// clearActiveLocked drops the active order id; the next effect pass
// cascades the connection back to idle.
func (s *Session) clearActiveLocked() {
	s.activeID = 0
	s.enqueuePersist(persistReq{clear: true})
	s.reconcileLocked()
}

// persistLocked stores the active order id; failures are logged and do
// not block in-memory state.
func (s *Session) persistLocked(id int64) {
	s.enqueuePersist(persistReq{id: id})
}

// enqueuePersist runs with mu held; it never blocks the session on a
// slow store.
func (s *Session) enqueuePersist(req persistReq) {
	if s.closed {
		return
	}
	select {
	case s.persist <- req:
	default:
		log.Print("tracker: persist queue full, dropping update")
	}
}

func (s *Session) publishLocked(snap model.OrderSnapshot) {
	typ := "order.updated"
	if snap.Status.Terminal() {
		typ = "order.terminal"
	}
	s.opts.Broker.Publish(snap.OrderID, SnapshotEvent{ID: uuid.NewString(), Type: typ, Snapshot: snap})
}
