package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stratosmfi/backend/internal/export"
)

type ExportService interface {
	Build(ctx context.Context, exportType, format string) (*export.File, error)
}

type ExportHandler struct {
	exports ExportService
}

func NewExportHandler(exports ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) Download(c *gin.Context) {
	exportType := strings.TrimSpace(c.Param("exportType"))
	format := strings.TrimSpace(c.DefaultQuery("format", export.FormatCSV))

	file, err := h.exports.Build(c.Request.Context(), exportType, format)
	if err != nil {
		switch {
		case errors.Is(err, export.ErrUnknownType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_export_type"})
		case errors.Is(err, export.ErrUnknownFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_export_format"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
