package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
	"github.com/stratosmfi/backend/internal/domain/reporting"
)

type CollectionService interface {
	RecordPayment(ctx context.Context, in ledgerdomain.RecordPaymentInput) (*ledgerdomain.RecordResult, error)
	Receipt(ctx context.Context, paymentID string) (*ledgerdomain.Receipt, error)
}

type ReportingService interface {
	Summary(ctx context.Context, collectorID string) (*reporting.Summary, error)
	MonthlyTrend(ctx context.Context, collectorID string) ([]reporting.TrendPoint, error)
}

// CollectionHandler serves the field collection surface: recording
// installments, receipts, and the collector's own portfolio views.
type CollectionHandler struct {
	collections CollectionService
	borrowers   BorrowerService
	loans       LoanService
	reports     ReportingService
}

func NewCollectionHandler(collections CollectionService, borrowers BorrowerService, loans LoanService, reports ReportingService) *CollectionHandler {
	return &CollectionHandler{collections: collections, borrowers: borrowers, loans: loans, reports: reports}
}

func (h *CollectionHandler) RecordPayment(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	var req struct {
		Amount *int64 `json:"amount"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if strings.TrimSpace(req.Notes) == "" {
		req.Notes = "Mobile collection"
	}

	collectorID := c.GetString("user_id")
	result, err := h.collections.RecordPayment(c.Request.Context(), ledgerdomain.RecordPaymentInput{
		LoanID:         loanID,
		CollectorID:    collectorID,
		AmountOverride: req.Amount,
		Notes:          req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledgerdomain.ErrLoanNotActive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "loan_not_active"})
		case errors.Is(err, ledgerdomain.ErrScheduleExhausted):
			c.JSON(http.StatusConflict, gin.H{"error": "schedule_exhausted"})
		case errors.Is(err, ledgerdomain.ErrInstallmentConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "installment_conflict"})
		case errors.Is(err, ledgerdomain.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "record_payment_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment":        result.Payment,
		"loan_completed": result.Completed,
	})
}

func (h *CollectionHandler) Receipt(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("paymentId"))
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_payment_id"})
		return
	}
	receipt, err := h.collections.Receipt(c.Request.Context(), paymentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment_not_found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// MyBorrowers lists the borrowers assigned to the authenticated
// collector.
func (h *CollectionHandler) MyBorrowers(c *gin.Context) {
	collectorID := c.GetString("user_id")
	items, err := h.borrowers.List(c.Request.Context(), borrowerdomain.ListFilter{
		CollectorID: collectorID,
		Status:      strings.TrimSpace(c.Query("status")),
		Search:      strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_borrowers_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// MyLoans lists the active loans inside the collector's portfolio.
func (h *CollectionHandler) MyLoans(c *gin.Context) {
	collectorID := c.GetString("user_id")
	status := strings.TrimSpace(c.DefaultQuery("status", loandomain.StatusActive))
	items, err := h.loans.List(c.Request.Context(), loandomain.ListFilter{
		CollectorID: collectorID,
		Status:      status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// MySummary is the collector dashboard scoped to their own
// collections.
func (h *CollectionHandler) MySummary(c *gin.Context) {
	collectorID := c.GetString("user_id")
	summary, err := h.reports.Summary(c.Request.Context(), collectorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary_failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
