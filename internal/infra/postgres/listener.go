package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// MatchChannel carries the id of every match whose record changed.
const MatchChannel = "match_changed"

// Notify queues a notification on channel; inside a transaction it is delivered on commit.
func Notify(ctx context.Context, db DBTX, channel, payload string) error {
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

// Listener holds one LISTEN connection and fans notifications out to
// in-process subscribers keyed by payload. Callbacks run on the listener
// goroutine and must not block.
type Listener struct {
	pool       *pgxpool.Pool
	channel    string
	logger     *zap.Logger
	retryDelay time.Duration

	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func()
}

func NewListener(pool *pgxpool.Pool, channel string, logger *zap.Logger) *Listener {
	return &Listener{
		pool:       pool,
		channel:    channel,
		logger:     logger,
		retryDelay: 2 * time.Second,
		subs:       make(map[string]map[uint64]func()),
	}
}

// Subscribe registers onChange for key and returns a function that removes it.
func (l *Listener) Subscribe(key string, onChange func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	if l.subs[key] == nil {
		l.subs[key] = make(map[uint64]func())
	}
	l.subs[key][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[key], id)
			if len(l.subs[key]) == 0 {
				delete(l.subs, key)
			}
		})
	}
}

// Run listens until ctx is done, reconnecting after connection failures.
// After a reconnect every subscriber is notified once, since notifications
// sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	first := true
	for {
		err := l.listen(ctx, !first)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		first = false

		l.logger.Warn("notification listener disconnected",
			zap.String("channel", l.channel),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context, resync bool) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	// The LISTEN session stays with this connection, so it never goes back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.logger.Info("listening for notifications", zap.String("channel", l.channel))

	if resync {
		l.dispatchAll()
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatch(n.Payload)
	}
}

func (l *Listener) dispatch(key string) {
	l.mu.RLock()
	fns := make([]func(), 0, len(l.subs[key]))
	for _, fn := range l.subs[key] {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (l *Listener) dispatchAll() {
	l.mu.RLock()
	keys := make([]string, 0, len(l.subs))
	for key := range l.subs {
		keys = append(keys, key)
	}
	l.mu.RUnlock()

	for _, key := range keys {
		l.dispatch(key)
	}
}
