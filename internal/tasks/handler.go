package tasks

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelapp/internal/pkg/response"
)

type StatusReader interface {
	Status(ctx context.Context, taskID string) (Status, error)
}

type Handler struct {
	reader StatusReader
}

func NewHandler(reader StatusReader) *Handler {
	return &Handler{reader: reader}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/tasks/:task_id", h.GetStatus)
}

// GetStatus godoc
// GET /api/v1/tasks/:task_id
func (h *Handler) GetStatus(c *gin.Context) {
	taskID := strings.TrimSpace(c.Param("task_id"))
	if taskID == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "task_id is required")
		return
	}

	st, err := h.reader.Status(c.Request.Context(), taskID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}
