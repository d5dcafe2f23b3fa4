package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
)

type BorrowerService interface {
	Register(ctx context.Context, in borrowerdomain.CreateInput) (*borrowerdomain.Entity, error)
	Get(ctx context.Context, id string) (*borrowerdomain.Entity, error)
	List(ctx context.Context, f borrowerdomain.ListFilter) ([]borrowerdomain.Entity, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AssignCollector(ctx context.Context, id string, collectorID *string) error
}

type BorrowerHandler struct {
	borrowerService BorrowerService
}

func NewBorrowerHandler(borrowerService BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService}
}

func (h *BorrowerHandler) Register(c *gin.Context) {
	var req struct {
		FullName       string `json:"full_name" binding:"required"`
		NICNumber      string `json:"nic_number" binding:"required"`
		Phone          string `json:"phone"`
		Address        string `json:"address"`
		GuarantorName  string `json:"guarantor_name"`
		GuarantorPhone string `json:"guarantor_phone"`
		GuarantorNIC   string `json:"guarantor_nic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.borrowerService.Register(c.Request.Context(), borrowerdomain.CreateInput{
		FullName:       req.FullName,
		NICNumber:      req.NICNumber,
		Phone:          req.Phone,
		Address:        req.Address,
		GuarantorName:  req.GuarantorName,
		GuarantorPhone: req.GuarantorPhone,
		GuarantorNIC:   req.GuarantorNIC,
	})
	if err != nil {
		if errors.Is(err, borrowerdomain.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register_failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BorrowerHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.borrowerService.List(c.Request.Context(), borrowerdomain.ListFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		CollectorID: strings.TrimSpace(c.Query("collector_id")),
		Search:      strings.TrimSpace(c.Query("search")),
		Limit:       int32(limit),
		Offset:      int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_borrowers_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BorrowerHandler) Get(c *gin.Context) {
	borrowerID := strings.TrimSpace(c.Param("borrowerId"))
	if borrowerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_borrower_id"})
		return
	}
	item, err := h.borrowerService.Get(c.Request.Context(), borrowerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "borrower_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *BorrowerHandler) UpdateStatus(c *gin.Context) {
	borrowerID := strings.TrimSpace(c.Param("borrowerId"))
	if borrowerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.borrowerService.UpdateStatus(c.Request.Context(), borrowerID, req.Status); err != nil {
		if errors.Is(err, borrowerdomain.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *BorrowerHandler) AssignCollector(c *gin.Context) {
	borrowerID := strings.TrimSpace(c.Param("borrowerId"))
	if borrowerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	var req struct {
		CollectorID *string `json:"collector_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if req.CollectorID != nil && strings.TrimSpace(*req.CollectorID) == "" {
		req.CollectorID = nil
	}
	if err := h.borrowerService.AssignCollector(c.Request.Context(), borrowerID, req.CollectorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assign_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
