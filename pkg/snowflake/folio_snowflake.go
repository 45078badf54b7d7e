// Package snowflake issues time-ordered 64-bit ids for records that arrive
// without one, such as projects saved by older clients.
//
// Layout: 41 bits of milliseconds since 2025-01-01 UTC, 10 bits of node id,
// 12 bits of per-millisecond sequence.
package snowflake

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

const (
	epoch int64 = 1735689600000

	nodeBits     = 10
	sequenceBits = 12

	maxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	timeShift = nodeBits + sequenceBits
	nodeShift = sequenceBits
)

var (
	ErrInvalidNode    = errors.New("snowflake: node must be between 0 and 1023")
	ErrClockMovedBack = errors.New("snowflake: clock moved backwards")
)

// Generator is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	node     int64
	sequence int64
	last     int64
	now      func() int64
}

func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > maxNode {
		return nil, ErrInvalidNode
	}
	return &Generator{
		node: node,
		now:  func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Next returns the next id.
func (g *Generator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now < g.last {
		return 0, ErrClockMovedBack
	}

	if now == g.last {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			for now <= g.last {
				time.Sleep(100 * time.Microsecond)
				now = g.now()
			}
		}
	} else {
		g.sequence = 0
	}
	g.last = now

	return ((now - epoch) << timeShift) | (g.node << nodeShift) | g.sequence, nil
}

// NextString returns the next id in base 36, the form stored on projects.
func (g *Generator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// Parse splits an id into its parts.
func Parse(id int64) (ts time.Time, node int64, sequence int64) {
	ts = time.UnixMilli((id >> timeShift) + epoch)
	node = (id >> nodeShift) & maxNode
	sequence = id & maxSequence
	return
}

// ParseString is Parse for the base 36 form.
func ParseString(s string) (time.Time, int64, int64, error) {
	id, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	ts, node, seq := Parse(id)
	return ts, node, seq, nil
}
