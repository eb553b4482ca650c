package httpapi

import (
	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

// WorkerPool hands out one query.Scratch per concurrent request and takes
// it back when the request is done, honoring spec §5's rule that a
// Scratch belongs to exactly one in-flight query at a time and is never
// reallocated. Backed by a buffered channel rather than sync.Pool so the
// pool size is an explicit, bounded concurrency cap (spec §5 "bounded
// worker pool"), not a best-effort cache the runtime can shrink.
type WorkerPool struct {
	scratches chan *query.Scratch
}

// NewWorkerPool preallocates size Scratches against net.
func NewWorkerPool(net *network.Network, size int) *WorkerPool {
	p := &WorkerPool{scratches: make(chan *query.Scratch, size)}
	for i := 0; i < size; i++ {
		p.scratches <- query.NewScratch(net)
	}
	return p
}

// Acquire blocks until a Scratch is available.
func (p *WorkerPool) Acquire() *query.Scratch {
	return <-p.scratches
}

// Release returns s to the pool.
func (p *WorkerPool) Release(s *query.Scratch) {
	p.scratches <- s
}
