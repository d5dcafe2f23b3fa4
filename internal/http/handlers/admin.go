package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stratosmfi/backend/internal/db"
	admindomain "github.com/stratosmfi/backend/internal/domain/admin"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
)

type AdminService interface {
	ProvisionCollector(ctx context.Context, adminID string, in admindomain.ProvisionCollectorInput) (*db.Profile, error)
	ListCollectors(ctx context.Context) ([]db.Profile, error)
	MarkLoanDefaulted(ctx context.Context, adminID, loanID string) error
	Reset(ctx context.Context, adminID, target string) (map[string]int64, error)
}

type AdminHandler struct {
	adminService AdminService
}

func NewAdminHandler(adminService AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ProvisionCollector(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.adminService.ProvisionCollector(c.Request.Context(), c.GetString("user_id"), admindomain.ProvisionCollectorInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, admindomain.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "provision_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"collector": gin.H{
			"id":        created.ID,
			"full_name": created.FullName,
			"email":     created.Email,
			"phone":     created.Phone,
		},
	})
}

func (h *AdminHandler) ListCollectors(c *gin.Context) {
	collectors, err := h.adminService.ListCollectors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_collectors_failed"})
		return
	}
	items := make([]gin.H, 0, len(collectors))
	for _, col := range collectors {
		items = append(items, gin.H{
			"id":         col.ID,
			"full_name":  col.FullName,
			"email":      col.Email,
			"phone":      col.Phone,
			"created_at": col.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AdminHandler) MarkLoanDefaulted(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.adminService.MarkLoanDefaulted(c.Request.Context(), c.GetString("user_id"), loanID); err != nil {
		if errors.Is(err, loandomain.ErrLoanNotActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "loan_not_active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "default_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandler) Reset(c *gin.Context) {
	var req struct {
		Target string `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	counts, err := h.adminService.Reset(c.Request.Context(), c.GetString("user_id"), req.Target)
	if err != nil {
		if errors.Is(err, admindomain.ErrUnknownTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_reset_target"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": counts})
}
