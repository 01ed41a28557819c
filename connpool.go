// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"context"

	commonspool "github.com/jolestar/go-commons-pool"

	"github.com/inputcore/dispatch/channel"
)

// connPool recycles *Connection values across channel registration
// cycles. Unlike the sync.Pool allocators in pool.go, Borrow/Return
// here may legitimately fail or block on MaxTotal, which is fine: a
// new Connection is only ever needed from RegisterInputChannel, never
// from the dispatch hot path, so paying for the generic pool's
// bookkeeping (and its ability to cap outstanding Connections) is an
// acceptable and useful tradeoff here, unlike for events (pool.go).
type connPool struct {
	ctx context.Context
	p   *commonspool.ObjectPool
}

func newConnPool() *connPool {
	ctx := context.Background()
	factory := commonspool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return &Connection{}, nil
		})
	cfg := commonspool.NewDefaultPoolConfig()
	cfg.MaxTotal = -1
	return &connPool{ctx: ctx, p: commonspool.NewObjectPool(ctx, factory, cfg)}
}

// borrow returns a recycled or freshly-allocated *Connection bound to
// ch. Pool exhaustion (when MaxTotal is finite) surfaces as a regular
// error, which RegisterInputChannel returns wrapped with the channel
// name rather than panicking.
func (cp *connPool) borrow(ch *channel.Channel) (*Connection, error) {
	obj, err := cp.p.BorrowObject(cp.ctx)
	if err != nil {
		return nil, err
	}
	conn := obj.(*Connection)
	conn.reset(ch)
	return conn, nil
}

// release returns conn to the pool once its channel has gone ZOMBIE
// and no callback references it any longer.
func (cp *connPool) release(conn *Connection) {
	_ = cp.p.ReturnObject(cp.ctx, conn)
}
