package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Channel is the Postgres NOTIFY channel carrying changes.
const Channel = "hr_changes"

// PGNotifier publishes changes with pg_notify so every instance's Listener
// receives them.
type PGNotifier struct {
	pool *pgxpool.Pool
}

func NewPGNotifier(pool *pgxpool.Pool) *PGNotifier {
	return &PGNotifier{pool: pool}
}

func (n *PGNotifier) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if _, err := n.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, Channel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listener holds a dedicated connection on LISTEN and forwards every
// notification to a local Publisher (normally the Hub).
type Listener struct {
	pool    *pgxpool.Pool
	target  Publisher
	backoff time.Duration
}

func NewListener(pool *pgxpool.Pool, target Publisher) *Listener {
	return &Listener{pool: pool, target: target, backoff: 2 * time.Second}
}

// Run blocks until ctx is done, reconnecting after connection failures.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("realtime listener disconnected", "error", err, "retry_in", l.backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	slog.Info("realtime listener started", "channel", Channel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var change Change
		if err := json.Unmarshal([]byte(n.Payload), &change); err != nil {
			slog.Warn("realtime payload decode error", "error", err)
			continue
		}
		if err := l.target.Publish(ctx, change); err != nil {
			slog.Warn("realtime forward error", "error", err)
		}
	}
}
