package promise

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/signing/request"
)

var ErrDuplicatePromise = errors.New("a pending promise already exists for this id")

// Status of an external request promise
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type outcome struct {
	result *request.SignerResult
	err    error
}

// Promise is a pending asynchronous signing operation.
// Its done channel has room for exactly one outcome.
type Promise struct {
	ID        string
	CreatedAt time.Time

	status Status
	done   chan outcome
}

// Wait blocks until the promise settles or ctx is done.
// Returning on ctx.Done leaves the promise pending.
func (p *Promise) Wait(ctx context.Context) (*request.SignerResult, error) {
	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot is a read-only view of a promise
type Snapshot struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keys pending promises by correlation id.
// Settled promises are dropped, so settling them again finds nothing.
type Store struct {
	mu       sync.Mutex
	promises map[string]*Promise
	clock    time2.Clock
}

func NewStore(clock time2.Clock) *Store {
	return &Store{
		promises: make(map[string]*Promise),
		clock:    clock,
	}
}

// Register creates a pending promise for id
func (s *Store) Register(id string) (*Promise, error) {
	if id == "" {
		return nil, errors.New("promise id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.promises[id]; ok {
		return nil, errors.Wrapf(ErrDuplicatePromise, "id %s", id)
	}

	p := &Promise{
		ID:        id,
		CreatedAt: s.clock.Now(),
		status:    StatusPending,
		done:      make(chan outcome, 1),
	}
	s.promises[id] = p

	return p, nil
}

// Resolve settles the pending promise for id with result.
// Returns false if no pending promise exists.
func (s *Store) Resolve(id string, result *request.SignerResult) bool {
	return s.settle(id, StatusCompleted, outcome{result: result})
}

// Reject settles the pending promise for id with err.
// Returns false if no pending promise exists.
func (s *Store) Reject(id string, err error) bool {
	return s.settle(id, StatusFailed, outcome{err: err})
}

// RejectAll rejects every pending promise and returns how many were settled
func (s *Store) RejectAll(err error) int {
	s.mu.Lock()
	pending := make([]*Promise, 0, len(s.promises))
	for id, p := range s.promises {
		pending = append(pending, p)
		delete(s.promises, id)
	}
	s.mu.Unlock()

	for _, p := range pending {
		p.status = StatusFailed
		p.done <- outcome{err: err}
	}

	return len(pending)
}

func (s *Store) settle(id string, status Status, o outcome) bool {
	s.mu.Lock()
	p, ok := s.promises[id]
	if ok {
		delete(s.promises, id)
		p.status = status
	}
	s.mu.Unlock()

	if !ok {
		log.Debug().Str("promise_id", id).Str("status", string(status)).Msg("Ignoring settlement of unknown or settled promise")
		return false
	}

	p.done <- o

	return true
}

// Get returns a snapshot of the pending promise for id
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promises[id]
	if !ok {
		return Snapshot{}, false
	}

	return Snapshot{ID: p.ID, Status: p.status, CreatedAt: p.CreatedAt}, true
}

// Pending lists the pending promises, oldest first
func (s *Store) Pending() []Snapshot {
	s.mu.Lock()
	res := make([]Snapshot, 0, len(s.promises))
	for _, p := range s.promises {
		res = append(res, Snapshot{ID: p.ID, Status: p.status, CreatedAt: p.CreatedAt})
	}
	s.mu.Unlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})

	return res
}

// Len returns the number of pending promises
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.promises)
}
