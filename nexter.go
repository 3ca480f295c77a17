package lake

import (
	"sync"
	"sync/atomic"
)

type INexter interface {
	Next() uint64
	Last() uint64
}

// Nexter is a threadsafe monotonic unique id generator
type Nexter struct {
	id *uint64
}

// NexterOption is a functional option type for Nexter.
type NexterOption func(n *Nexter)

// NexterStartFrom is a NexterOption which sets the first id to be handed
// out.
func NexterStartFrom(id uint64) NexterOption {
	return func(n *Nexter) {
		*n.id = id
	}
}

// NewNexter creates a new id generator starting at 0
func NewNexter(opts ...NexterOption) *Nexter {
	var id uint64
	n := &Nexter{
		id: &id,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Next generates a new id and returns it
func (n *Nexter) Next() (nextID uint64) {
	nextID = atomic.AddUint64(n.id, 1)
	return nextID - 1
}

// Last returns the most recently generated id
func (n *Nexter) Last() (lastID uint64) {
	lastID = atomic.LoadUint64(n.id) - 1
	return
}

// PartitionBits is the number of low bits of a partition-prefixed id
// reserved for the per-partition counter.
const PartitionBits = 40

// PartitionNexter hands out ids whose high bits carry a partition prefix
// and whose low PartitionBits bits are a per-partition counter. Ids
// assigned under different partitions can never collide, so no global
// sequence needs to be coordinated across them.
type PartitionNexter struct {
	mu      sync.Mutex
	nexters map[uint64]*Nexter
}

// NewPartitionNexter creates a PartitionNexter with no partitions yet.
func NewPartitionNexter() *PartitionNexter {
	return &PartitionNexter{
		nexters: make(map[uint64]*Nexter),
	}
}

// Next generates a new id under the given partition prefix.
func (p *PartitionNexter) Next(partition uint64) uint64 {
	p.mu.Lock()
	n, ok := p.nexters[partition]
	if !ok {
		n = NewNexter()
		p.nexters[partition] = n
	}
	p.mu.Unlock()
	return partition<<PartitionBits | n.Next()
}
