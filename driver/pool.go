package driver

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-multierror"

	"github.com/omniql-engine/relq/rqerrors"
)

var (
	metricsKeyPoolAcquire   = []string{"relq", "pool", "acquire"}
	metricsKeyPoolRelease   = []string{"relq", "pool", "release"}
	metricsKeyPoolTimeout   = []string{"relq", "pool", "timeout"}
	metricsKeyPoolReconnect = []string{"relq", "pool", "reconnect"}
)

// Dialer opens a new Connection. Supplied by the caller (usually
// driveradapter.Open bound to a DSN) so this package stays free of any
// concrete wire protocol.
type Dialer func(ctx context.Context) (Connection, error)

// PoolConfig bounds a Pool's size and timing.
type PoolConfig struct {
	MinSize             int
	MaxSize             int
	AcquireTimeout      time.Duration
	HealthCheckInterval time.Duration
}

type idleConn struct {
	conn    Connection
	lastUse time.Time
}

// waiter is one pending Acquire call parked on the pool's condition
// variable, tracked in the monitor's min-heap by its deadline.
type waiter struct {
	deadline time.Time
	expired  bool
	index    int
}

type waiterHeap []*waiter

func (h waiterHeap) Len() int            { return len(h) }
func (h waiterHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h waiterHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *waiterHeap) Push(x any) {
	w := x.(*waiter)
	w.index = len(*h)
	*h = append(*h, w)
}
func (h *waiterHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	*h = old[:n-1]
	return w
}

// Pool bounds concurrent connections to a database, parking excess
// acquirers on a condition variable and evicting them on timeout via a
// single min-heap monitor, per spec.md §5's shared-resource policy: one
// lock and condition variable for pool state, a separate lock guarding
// the deadline heap, and a lone monitor goroutine that releases the
// heap lock before broadcasting so the two locks are never nested.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	cfg    PoolConfig
	dialer Dialer

	idle    []*idleConn
	inUse   int
	closed  bool

	heapMu sync.Mutex
	deadlines waiterHeap

	wake chan struct{}
	stop chan struct{}
}

// NewPool builds a Pool and starts its monitor goroutine.
func NewPool(cfg PoolConfig, dialer Dialer) *Pool {
	p := &Pool{
		cfg:    cfg,
		dialer: dialer,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.monitorLoop()
	return p
}

func (p *Pool) wakeMonitor() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// monitorLoop sleeps until the earliest pending deadline, then expires
// every waiter whose deadline has passed and issues one broadcast so
// all of them wake and re-check the predicate together.
func (p *Pool) monitorLoop() {
	for {
		p.heapMu.Lock()
		if len(p.deadlines) == 0 {
			p.heapMu.Unlock()
			select {
			case <-p.wake:
				continue
			case <-p.stop:
				return
			}
		}
		earliest := p.deadlines[0].deadline
		p.heapMu.Unlock()

		timer := time.NewTimer(time.Until(earliest))
		select {
		case <-timer.C:
			p.heapMu.Lock()
			now := time.Now()
			for len(p.deadlines) > 0 && !p.deadlines[0].deadline.After(now) {
				w := heap.Pop(&p.deadlines).(*waiter)
				w.expired = true
			}
			p.heapMu.Unlock()
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-p.wake:
			timer.Stop()
		case <-p.stop:
			timer.Stop()
			return
		}
	}
}

// Acquire returns a connection, blocking if the pool is at MaxSize
// until one is released or AcquireTimeout expires. Cancelling ctx does
// not end the wait; ctx is passed on to the dialer and health check.
func (p *Pool) Acquire(ctx context.Context) (Connection, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, &rqerrors.PoolError{Kind: rqerrors.PoolClosed}
		}

		if n := len(p.idle); n > 0 {
			ic := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.inUse++
			p.mu.Unlock()
			return p.returnHealthy(ctx, ic)
		}

		if p.inUse < p.cfg.MaxSize {
			p.inUse++
			p.mu.Unlock()
			conn, err := p.dialer(ctx)
			if err != nil {
				p.mu.Lock()
				p.inUse--
				p.mu.Unlock()
				return nil, err
			}
			metrics.IncrCounter(metricsKeyPoolAcquire, 1)
			return conn, nil
		}

		w := &waiter{deadline: time.Now().Add(p.cfg.AcquireTimeout)}
		p.heapMu.Lock()
		heap.Push(&p.deadlines, w)
		p.heapMu.Unlock()
		p.wakeMonitor()

		p.cond.Wait() // releases p.mu, reacquires before returning

		p.heapMu.Lock()
		expired := w.expired
		if !expired && w.index >= 0 {
			heap.Remove(&p.deadlines, w.index)
		}
		p.heapMu.Unlock()
		inUse := p.inUse
		p.mu.Unlock()

		if expired {
			metrics.IncrCounter(metricsKeyPoolTimeout, 1)
			return nil, &rqerrors.PoolError{Kind: rqerrors.PoolTimeout, InUse: inUse, MaxSize: p.cfg.MaxSize}
		}
		// Spurious or resource-became-available wakeup: loop and retry.
	}
}

// returnHealthy issues SELECT 1 against an idle connection that has
// been sitting longer than HealthCheckInterval, replacing it on
// failure, before handing it back to the caller.
func (p *Pool) returnHealthy(ctx context.Context, ic *idleConn) (Connection, error) {
	if time.Since(ic.lastUse) <= p.cfg.HealthCheckInterval {
		metrics.IncrCounter(metricsKeyPoolAcquire, 1)
		return ic.conn, nil
	}
	if _, err := ic.conn.ExecuteSQL(ctx, "SELECT 1", nil); err == nil {
		metrics.IncrCounter(metricsKeyPoolAcquire, 1)
		return ic.conn, nil
	}
	_ = ic.conn.Close()
	metrics.IncrCounter(metricsKeyPoolReconnect, 1)
	conn, err := p.dialer(ctx)
	if err != nil {
		p.mu.Lock()
		p.inUse--
		p.mu.Unlock()
		return nil, &rqerrors.PoolError{Kind: rqerrors.PoolHealthCheckFatal, Cause: err}
	}
	metrics.IncrCounter(metricsKeyPoolAcquire, 1)
	return conn, nil
}

// Release returns conn to the idle set and wakes every parked waiter
// so each re-checks for an available connection.
func (p *Pool) Release(conn Connection) {
	p.mu.Lock()
	p.inUse--
	p.idle = append(p.idle, &idleConn{conn: conn, lastUse: time.Now()})
	p.mu.Unlock()
	p.cond.Broadcast()
	metrics.IncrCounter(metricsKeyPoolRelease, 1)
}

// Close shuts the pool down, closing every idle connection and failing
// any future Acquire call with rqerrors.PoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	p.cond.Broadcast()
	close(p.stop)
	var result *multierror.Error
	for _, ic := range idle {
		if err := ic.conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
