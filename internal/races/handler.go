package races

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/response"
)

// Handler serves the public race listing.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a races handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/races.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list races failed", zap.Error(err))
		response.Error(c, apperr.Internal(err))
		return
	}
	response.OK(c, gin.H{"races": list})
}
