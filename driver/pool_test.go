package driver_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/driver"
	"github.com/omniql-engine/relq/rqerrors"
)

type fakeConn struct {
	closed int32
	fail   bool
}

func (c *fakeConn) ExecuteSQL(ctx context.Context, sql string, params []any) (driver.RawRows, error) {
	if c.fail {
		return nil, assert.AnError
	}
	return driver.RawRows{}, nil
}
func (c *fakeConn) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return nil
}
func (c *fakeConn) ListTables(ctx context.Context, schema string) ([]string, error) { return nil, nil }
func (c *fakeConn) DescribeTable(ctx context.Context, table, schema string) ([]driver.ColumnInfo, error) {
	return nil, nil
}
func (c *fakeConn) ListSchemas(ctx context.Context) ([]string, error) { return nil, nil }

func newTestPool(maxSize int, acquireTimeout time.Duration) *driver.Pool {
	return driver.NewPool(driver.PoolConfig{
		MinSize:             0,
		MaxSize:             maxSize,
		AcquireTimeout:      acquireTimeout,
		HealthCheckInterval: time.Hour,
	}, func(ctx context.Context) (driver.Connection, error) {
		return &fakeConn{}, nil
	})
}

func TestPoolAcquireUpToMaxSize(t *testing.T) {
	p := newTestPool(2, 100*time.Millisecond)
	defer p.Close()

	ctx := context.Background()
	c1, err := p.Acquire(ctx)
	require.NoError(t, err)
	c2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotNil(t, c1)
	assert.NotNil(t, c2)
}

func TestPoolAcquireTimesOutWhenExhausted(t *testing.T) {
	p := newTestPool(1, 50*time.Millisecond)
	defer p.Close()

	ctx := context.Background()
	_, err := p.Acquire(ctx)
	require.NoError(t, err)

	_, err = p.Acquire(ctx)
	require.Error(t, err)
	var poolErr *rqerrors.PoolError
	require.ErrorAs(t, err, &poolErr)
	assert.Equal(t, rqerrors.PoolTimeout, poolErr.Kind)
}

func TestPoolReleaseFreesASlotForAWaiter(t *testing.T) {
	p := newTestPool(1, 2*time.Second)
	defer p.Close()

	ctx := context.Background()
	conn, err := p.Acquire(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		c2, err := p.Acquire(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, c2)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	p.Release(conn)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken after release")
	}
}

func TestPoolRejectsAcquireAfterClose(t *testing.T) {
	p := newTestPool(1, 100*time.Millisecond)
	require.NoError(t, p.Close())

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	var poolErr *rqerrors.PoolError
	require.ErrorAs(t, err, &poolErr)
	assert.Equal(t, rqerrors.PoolClosed, poolErr.Kind)
}
