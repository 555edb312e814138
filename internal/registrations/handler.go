package registrations

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/internal/abuse"
	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/response"
)

// Handler handles the public registration endpoint.
type Handler struct {
	svc    *Service
	guard  *abuse.Guard
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, guard *abuse.Guard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, guard: guard, logger: logger}
}

// Submit handles POST /api/registration. The abuse guard admits or rejects
// before any validation runs; the outcome is recorded either way.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	ip := c.ClientIP()

	if err := h.guard.AllowRegistration(ctx, ip); err != nil {
		response.Error(c, err)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.guard.RecordRegistrationFailure(ctx, ip)
		response.Error(c, apperr.New(apperr.CodeInvalidPayload))
		return
	}

	snap, err := h.svc.Submit(ctx, &req)
	if err != nil {
		h.guard.RecordRegistrationFailure(ctx, ip)
		if e := apperr.From(err); e.Code == apperr.CodeInternal {
			h.logger.Error("registration failed", zap.Error(err), zap.String("client_ip", ip))
		}
		response.Error(c, err)
		return
	}

	h.guard.RecordRegistrationSuccess(ctx, ip)
	response.Created(c, snap)
}
