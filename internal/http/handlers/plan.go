package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	plandomain "github.com/stratosmfi/backend/internal/domain/plan"
)

type PlanService interface {
	Create(ctx context.Context, in plandomain.CreateInput) (*plandomain.Entity, error)
	Get(ctx context.Context, id int64) (*plandomain.Entity, error)
	List(ctx context.Context) ([]plandomain.Entity, error)
	Delete(ctx context.Context, id int64) error
}

type PlanHandler struct {
	planService PlanService
}

func NewPlanHandler(planService PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required"`
		PrincipalAmount int64   `json:"principal_amount" binding:"required"`
		DurationMonths  int32   `json:"duration_months" binding:"required"`
		InterestRatePct float64 `json:"interest_rate_pct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.planService.Create(c.Request.Context(), plandomain.CreateInput{
		Name:            req.Name,
		PrincipalAmount: req.PrincipalAmount,
		DurationMonths:  req.DurationMonths,
		InterestRatePct: req.InterestRatePct,
	})
	if err != nil {
		switch {
		case errors.Is(err, plandomain.ErrMissingName),
			errors.Is(err, plandomain.ErrInvalidPrincipal),
			errors.Is(err, plandomain.ErrInvalidDuration),
			errors.Is(err, plandomain.ErrInvalidRate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_plan", "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_plan_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PlanHandler) List(c *gin.Context) {
	items, err := h.planService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_plans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PlanHandler) Get(c *gin.Context) {
	planID, err := strconv.ParseInt(strings.TrimSpace(c.Param("planId")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_plan_id"})
		return
	}
	item, err := h.planService.Get(c.Request.Context(), planID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	planID, err := strconv.ParseInt(strings.TrimSpace(c.Param("planId")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_plan_id"})
		return
	}
	if err := h.planService.Delete(c.Request.Context(), planID); err != nil {
		if errors.Is(err, plandomain.ErrPlanInUse) {
			c.JSON(http.StatusConflict, gin.H{"error": "plan_in_use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_plan_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
