package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
)

type LoanService interface {
	Issue(ctx context.Context, borrowerID string, planID int64) (*loandomain.Entity, error)
	Get(ctx context.Context, loanID string) (*loandomain.Entity, error)
	List(ctx context.Context, f loandomain.ListFilter) ([]loandomain.ListItem, error)
}

type LedgerReader interface {
	Schedule(ctx context.Context, loanID string) ([]ledgerdomain.ScheduleEntry, error)
	Progress(ctx context.Context, loanID string) (*ledgerdomain.Progress, error)
	Payments(ctx context.Context, loanID string) ([]ledgerdomain.Payment, error)
}

type LoanHandler struct {
	loanService LoanService
	ledger      LedgerReader
}

func NewLoanHandler(loanService LoanService, ledger LedgerReader) *LoanHandler {
	return &LoanHandler{loanService: loanService, ledger: ledger}
}

func (h *LoanHandler) Issue(c *gin.Context) {
	var req struct {
		BorrowerID string `json:"borrower_id" binding:"required"`
		PlanID     int64  `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.loanService.Issue(c.Request.Context(), req.BorrowerID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, loandomain.ErrActiveLoanExists):
			c.JSON(http.StatusConflict, gin.H{"error": "active_loan_exists"})
		case errors.Is(err, loandomain.ErrFirstLoanLimit):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "first_loan_limit", "detail": err.Error()})
		case errors.Is(err, loandomain.ErrBorrowerInactive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "borrower_inactive"})
		case errors.Is(err, loandomain.ErrMissingBorrowerID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "issue_loan_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LoanHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.loanService.List(c.Request.Context(), loandomain.ListFilter{
		BorrowerID:  strings.TrimSpace(c.Query("borrower_id")),
		Status:      strings.TrimSpace(c.Query("status")),
		CollectorID: strings.TrimSpace(c.Query("collector_id")),
		Limit:       int32(limit),
		Offset:      int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) Get(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	item, err := h.loanService.Get(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
		return
	}
	progress, err := h.ledger.Progress(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loan_progress_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": item, "progress": progress})
}

func (h *LoanHandler) Schedule(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	entries, err := h.ledger.Schedule(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *LoanHandler) Payments(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	payments, err := h.ledger.Payments(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_payments_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": payments})
}
