package board

import (
	"sync"
	"time"
)

// sweepInterval bounds how often Get scans for idle boards.
const sweepInterval = time.Minute

// Registry keeps one Board per session id and forgets boards that have not
// been used for longer than the TTL.
type Registry struct {
	mu        sync.Mutex
	boards    map[string]*session
	newBoard  func() *Board
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type session struct {
	board    *Board
	lastSeen time.Time
}

// NewRegistry returns a registry that creates boards with newBoard.
func NewRegistry(newBoard func() *Board, ttl time.Duration) *Registry {
	return &Registry{
		boards:   make(map[string]*session),
		newBoard: newBoard,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the board for id, creating it on first use.
func (r *Registry) Get(id string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.sweep(now)
		r.lastSweep = now
	}

	s, ok := r.boards[id]
	if !ok {
		s = &session{board: r.newBoard()}
		r.boards[id] = s
	}
	s.lastSeen = now
	return s.board
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

func (r *Registry) sweep(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, s := range r.boards {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.boards, id)
		}
	}
}
