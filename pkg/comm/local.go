// pkg/comm/local.go

package comm

import (
	"context"
	"fmt"
	"sync"

	"ParIO/pkg/utils"

	"github.com/google/uuid"
)

type opKind uint8

const (
	opSum opKind = iota + 1
	opFloatSum
)

func (k opKind) String() string {
	switch k {
	case opSum:
		return "AllreduceSum"
	case opFloatSum:
		return "AllreduceFloat64"
	}
	return "unknown"
}

// round is one collective, shared by the members until all of them left it.
type round struct {
	kind    opKind
	arrived int
	left    int
	isum    int64
	fsum    float64
	done    bool
}

// Group is a group of workers living in the same process, typically one
// goroutine per rank.
type Group struct {
	id   string
	size int

	mu     sync.Mutex
	cond   *utils.Cond
	rounds map[uint64]*round
	err    error
}

// NewGroup creates a group of size members.
func NewGroup(size int) *Group {
	if size < 1 {
		panic(fmt.Sprintf("invalid group size: %d", size))
	}
	g := &Group{
		id:     uuid.NewString(),
		size:   size,
		rounds: make(map[uint64]*round),
	}
	g.cond = utils.NewCond(&g.mu)
	return g
}

func (g *Group) ID() string {
	return g.id
}

func (g *Group) Size() int {
	return g.size
}

// Member returns the communicator of rank. Each rank must be used by a
// single goroutine.
func (g *Group) Member(rank int) Communicator {
	if rank < 0 || rank >= g.size {
		panic(fmt.Sprintf("invalid rank %d for group of %d", rank, g.size))
	}
	return &member{g: g, rank: rank}
}

// Abort fails every pending and future collective of the group.
func (g *Group) Abort(err error) {
	g.abort(-1, err)
}

// Err returns the reason the group was aborted, or nil.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

func (g *Group) abort(rank int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.abortLocked(rank, err)
}

// locked
func (g *Group) abortLocked(rank int, err error) {
	if g.err != nil {
		return
	}
	g.err = Aborted(rank, err)
	logger.Warnf("group %s: %s", g.id, g.err)
	g.cond.Broadcast()
}

type member struct {
	g    *Group
	rank int
	seq  uint64
}

func (m *member) Rank() int {
	return m.rank
}

func (m *member) Size() int {
	return m.g.size
}

func (m *member) reduce(ctx context.Context, kind opKind, iv int64, fv float64) (*round, error) {
	g := m.g
	seq := m.seq
	m.seq++

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	r, ok := g.rounds[seq]
	if !ok {
		r = &round{kind: kind}
		g.rounds[seq] = r
	}
	if r.kind != kind {
		g.abortLocked(m.rank, fmt.Errorf("%w: %s in round %d, others called %s", ErrMismatch, kind, seq, r.kind))
		return nil, g.err
	}
	r.arrived++
	r.isum += iv
	r.fsum += fv
	if r.arrived == g.size {
		r.done = true
		g.cond.Broadcast()
	}
	for !r.done {
		if g.err != nil {
			return nil, g.err
		}
		if err := g.cond.WaitContext(ctx); err != nil && !r.done {
			g.abortLocked(m.rank, err)
			return nil, g.err
		}
	}
	r.left++
	if r.left == g.size {
		delete(g.rounds, seq)
	}
	return r, nil
}

func (m *member) AllreduceSum(ctx context.Context, v int64) (int64, error) {
	r, err := m.reduce(ctx, opSum, v, 0)
	if err != nil {
		return 0, err
	}
	return r.isum, nil
}

func (m *member) AllreduceFloat64(ctx context.Context, v float64) (float64, error) {
	r, err := m.reduce(ctx, opFloatSum, 0, v)
	if err != nil {
		return 0, err
	}
	return r.fsum, nil
}

func (m *member) Barrier(ctx context.Context) error {
	_, err := m.reduce(ctx, opSum, 0, 0)
	return err
}

func (m *member) Abort(err error) {
	m.g.abort(m.rank, err)
}

func (m *member) Close() error {
	return nil
}
