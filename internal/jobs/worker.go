package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const loanCompletedTopic = "loan_completed"

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

// CompletionDetails is what the completion email needs about a
// finished loan.
type CompletionDetails struct {
	BorrowerName   string
	TotalCollected int64
	CompletedAt    time.Time
}

type LoanReader interface {
	GetCompletionDetails(ctx context.Context, loanID string) (*CompletionDetails, error)
}

type Mailer interface {
	SendLoanCompleted(borrowerName, loanID string, totalCollected int64, completedAt time.Time) error
}

type Reconciler interface {
	ReconcileLoanStatuses(ctx context.Context) (int64, error)
}

type Worker struct {
	outboxRepo   OutboxRepository
	loans        LoanReader
	mailer       Mailer
	reconciler   Reconciler
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, loans LoanReader, mailer Mailer, reconciler Reconciler) *Worker {
	return &Worker{
		outboxRepo:  outboxRepo,
		loans:       loans,
		mailer:      mailer,
		reconciler:  reconciler,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	if w.reconciler != nil {
		if _, err := w.reconciler.ReconcileLoanStatuses(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case loanCompletedTopic:
		return w.processLoanCompleted(ctx, job)
	default:
		if job.Attempts >= w.maxAttempts {
			return w.outboxRepo.MarkFailed(ctx, job.ID, "unsupported_topic")
		}
		next := w.now().Add(w.retryBackoff(job.Attempts))
		return w.outboxRepo.MarkRetry(ctx, job.ID, next, "unsupported_topic")
	}
}

type loanCompletedPayload struct {
	LoanID string `json:"loan_id"`
}

func (w *Worker) processLoanCompleted(ctx context.Context, job OutboxJob) error {
	var payload loanCompletedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, errors.New("invalid_payload"))
	}
	if payload.LoanID == "" {
		return w.handleJobError(ctx, job, errors.New("missing_loan_id"))
	}

	if w.mailer == nil {
		return w.outboxRepo.MarkDone(ctx, job.ID)
	}

	details, err := w.loans.GetCompletionDetails(ctx, payload.LoanID)
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	if err := w.mailer.SendLoanCompleted(details.BorrowerName, payload.LoanID, details.TotalCollected, details.CompletedAt); err != nil {
		return w.handleJobError(ctx, job, err)
	}

	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
