// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/math32"
	"golang.org/x/sync/errgroup"
)

// ErrReleased is returned by a backend that has been released.
var ErrReleased = errors.New("parallel: backend has been released")

// HostBackend runs the kernels on the CPU, with each dispatch split
// into work groups of [WorkgroupSize] running on a bounded pool of
// goroutines. All writes and submissions are executed in order on a
// queue goroutine, so Submit does not wait for the kernels.
type HostBackend struct {
	// Threads is the maximum number of work groups run at once.
	// It defaults to GOMAXPROCS.
	Threads int

	state hostState

	// queue has the pending operations, run in order.
	queue chan hostOp

	// done is closed when the queue goroutine exits.
	done chan struct{}

	// queueMu protects released and the closing of queue.
	queueMu  sync.RWMutex
	released bool

	// errMu protects err.
	errMu sync.Mutex
	err   error
}

// hostOp is one queued operation.
type hostOp struct {
	fn func() error

	// fence, if non-nil, receives the result of the operation,
	// or the earlier error that caused it to be skipped.
	fence chan error
}

// NewHostBackend returns a new host backend with the given
// maximum number of concurrent work groups; 0 uses GOMAXPROCS.
func NewHostBackend(threads int) *HostBackend {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	hb := &HostBackend{Threads: threads}
	hb.queue = make(chan hostOp, 64)
	hb.done = make(chan struct{})
	go hb.run()
	return hb
}

func (hb *HostBackend) Name() string { return fmt.Sprintf("host(%d)", hb.Threads) }

// run executes queued operations until the queue is closed.
// After the first error, remaining operations are skipped.
func (hb *HostBackend) run() {
	defer close(hb.done)
	for op := range hb.queue {
		err := hb.Err()
		if err == nil {
			err = op.fn()
			if err != nil {
				hb.errMu.Lock()
				hb.err = err
				hb.errMu.Unlock()
				slog.Error("parallel.HostBackend", "err", err)
			}
		}
		if op.fence != nil {
			op.fence <- err
		}
	}
}

// Err returns the first error from a queued operation, if any.
func (hb *HostBackend) Err() error {
	hb.errMu.Lock()
	defer hb.errMu.Unlock()
	return hb.err
}

// enqueue adds the operation to the queue, after any earlier error.
func (hb *HostBackend) enqueue(op hostOp) error {
	hb.queueMu.RLock()
	defer hb.queueMu.RUnlock()
	if hb.released {
		return ErrReleased
	}
	if err := hb.Err(); err != nil {
		return err
	}
	hb.queue <- op
	return nil
}

func (hb *HostBackend) Configure(layout *Layout) error {
	nodes := append([]GPUNode(nil), layout.Nodes...)
	edges := append([]GPUEdge(nil), layout.Edges...)
	adj := layout.Adjacency
	if adj == nil {
		adj = NewAdjacency(len(nodes), edges)
	}
	return hb.enqueue(hostOp{fn: func() error {
		hb.state.nodes = nodes
		hb.state.edges = edges
		hb.state.edgeForces = make([]math32.Vector4, len(edges))
		hb.state.adj = adj
		return nil
	}})
}

func (hb *HostBackend) WriteParams(params *Params) error {
	pr := *params
	return hb.enqueue(hostOp{fn: func() error {
		hb.state.params = pr
		return nil
	}})
}

func (hb *HostBackend) WriteNodes(nodes []GPUNode) error {
	ns := append([]GPUNode(nil), nodes...)
	return hb.enqueue(hostOp{fn: func() error {
		if len(ns) != len(hb.state.nodes) {
			return fmt.Errorf("parallel.HostBackend WriteNodes: got %d nodes, configured for %d", len(ns), len(hb.state.nodes))
		}
		copy(hb.state.nodes, ns)
		return nil
	}})
}

func (hb *HostBackend) Submit(dispatches []Dispatch) error {
	ds := append([]Dispatch(nil), dispatches...)
	return hb.enqueue(hostOp{fn: func() error {
		for _, d := range ds {
			if err := hb.dispatch(d); err != nil {
				return err
			}
		}
		return nil
	}})
}

// dispatch runs all work groups of one kernel, returning when all
// have completed, so the next dispatch sees all of its writes.
func (hb *HostBackend) dispatch(d Dispatch) error {
	if d.Kernel < 0 || d.Kernel >= KernelsN {
		return fmt.Errorf("parallel.HostBackend: invalid kernel %d", d.Kernel)
	}
	kf := hostKernels[d.Kernel]
	st := &hb.state
	n := int(st.params.NodeCount)
	if d.Kernel.IsEdgeSpace() {
		n = int(st.params.EdgeCount)
	}
	var g errgroup.Group
	g.SetLimit(hb.Threads)
	for wg := range d.Workgroups {
		start := wg * WorkgroupSize
		if start >= n {
			break
		}
		end := min(start+WorkgroupSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				kf(st, i)
			}
			return nil
		})
	}
	return g.Wait()
}

func (hb *HostBackend) ReadNodes(dst []GPUNode) error {
	fence := make(chan error, 1)
	err := hb.enqueue(hostOp{fence: fence, fn: func() error {
		if len(dst) != len(hb.state.nodes) {
			return fmt.Errorf("parallel.HostBackend ReadNodes: dst has %d nodes, configured for %d", len(dst), len(hb.state.nodes))
		}
		copy(dst, hb.state.nodes)
		return nil
	}})
	if err != nil {
		return err
	}
	return <-fence
}

func (hb *HostBackend) Release() {
	hb.queueMu.Lock()
	if hb.released {
		hb.queueMu.Unlock()
		return
	}
	hb.released = true
	close(hb.queue)
	hb.queueMu.Unlock()
	<-hb.done
}
