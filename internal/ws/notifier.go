package ws

import (
	"context"
	"encoding/json"
	"time"
)

// RealtimeEvent is one recorded payment, read off the payments table
// by sequence number.
type RealtimeEvent struct {
	Seq               int64
	PaymentID         string
	LoanID            string
	BorrowerName      string
	CollectorID       string
	Amount            int64
	InstallmentNumber int32
	LoanCompleted     bool
	CollectedAt       time.Time
}

type RealtimeRepository interface {
	ListPaymentEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]RealtimeEvent, error)
}

// Notifier polls the payments table and pushes new collections to the
// shared feed plus the collecting agent's own channel.
type Notifier struct {
	repo         RealtimeRepository
	hub          *Hub
	pollInterval time.Duration
	lastSeq      int64
}

func NewNotifier(repo RealtimeRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListPaymentEventsSince(ctx, n.lastSeq, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Seq > n.lastSeq {
			n.lastSeq = ev.Seq
		}
		payload, _ := json.Marshal(map[string]any{
			"event": "payment_recorded",
			"data": map[string]any{
				"payment_id":         ev.PaymentID,
				"loan_id":            ev.LoanID,
				"borrower_name":      ev.BorrowerName,
				"collector_id":       ev.CollectorID,
				"amount":             ev.Amount,
				"installment_number": ev.InstallmentNumber,
				"loan_completed":     ev.LoanCompleted,
				"collected_at":       ev.CollectedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish(collectionsFeedChannel, payload)
		if ev.CollectorID != "" {
			n.hub.Publish("collector:feed:"+ev.CollectorID, payload)
		}
	}
	return nil
}
