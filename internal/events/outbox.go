// Package events implements the notification outbox: bookings persist
// first, emails are queued and delivered asynchronously, so delivery
// failure never fails a booking.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowgrace/booking-platform/internal/notify"
	"github.com/glowgrace/booking-platform/internal/observability/metrics"
	"github.com/glowgrace/booking-platform/pkg/logging"
)

// OutboxEntry is a queued notification.
type OutboxEntry struct {
	ID        uuid.UUID
	Message   notify.EmailMessage
	CreatedAt time.Time
}

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore persists notifications for reliable delivery.
type OutboxStore struct {
	db execQuerier
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &OutboxStore{db: pool}
}

func newOutboxStoreWithExec(db execQuerier) *OutboxStore {
	if db == nil {
		panic("events: exec required")
	}
	return &OutboxStore{db: db}
}

// Enqueue stores a notification for asynchronous delivery.
func (s *OutboxStore) Enqueue(ctx context.Context, msg notify.EmailMessage) (uuid.UUID, error) {
	id := uuid.New()
	query := `
		INSERT INTO notification_outbox (id, recipient, recipient_name, subject, body, html)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, id, msg.To, msg.ToName, msg.Subject, msg.Body, msg.HTML); err != nil {
		return uuid.Nil, fmt.Errorf("events: enqueue notification: %w", err)
	}
	return id, nil
}

// FetchPending returns undelivered notifications oldest first.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, recipient, recipient_name, subject, body, html, created_at
		FROM notification_outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Message.To,
			&entry.Message.ToName,
			&entry.Message.Subject,
			&entry.Message.Body,
			&entry.Message.HTML,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkDelivered stamps a notification as sent.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE notification_outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Deliverer polls the outbox and sends queued emails. Failed sends stay
// queued and are retried on the next tick.
type Deliverer struct {
	store     *OutboxStore
	sender    notify.EmailSender
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, sender notify.EmailSender, m *metrics.BookingMetrics, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		sender:    sender,
		metrics:   m,
		logger:    logger,
		batchSize: 25,
		interval:  2 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// Start runs the delivery loop until the context is cancelled.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.sender == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return
	}
	for _, entry := range entries {
		if err := d.sender.Send(ctx, entry.Message); err != nil {
			d.metrics.ObserveNotification("failed")
			d.logger.Error("notification delivery failed", "error", err, "notification_id", entry.ID, "to", entry.Message.To)
			continue
		}
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark notification delivered", "error", err, "notification_id", entry.ID)
		} else if ok {
			d.metrics.ObserveNotification("delivered")
			d.logger.Debug("notification delivered", "notification_id", entry.ID, "to", entry.Message.To)
		}
	}
}
