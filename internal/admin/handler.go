package admin

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/internal/abuse"
	"github.com/raid-scout/backend/internal/registrations"
	"github.com/raid-scout/backend/internal/units"
	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/audit"
	"github.com/raid-scout/backend/pkg/response"
)

// SessionCookie is the admin session cookie name.
const SessionCookie = "raid_admin_session"

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// Handler handles the admin HTTP endpoints.
type Handler struct {
	authority    *Authority
	guard        *abuse.Guard
	regs         *registrations.Repository
	units        *units.Repository
	audit        *audit.Recorder
	secureCookie bool
	logger       *zap.Logger
}

// NewHandler creates an admin handler. secureCookie marks the session cookie
// Secure and must be on whenever the deployment serves HTTPS.
func NewHandler(authority *Authority, guard *abuse.Guard, regs *registrations.Repository, unitsRepo *units.Repository, recorder *audit.Recorder, secureCookie bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{authority: authority, guard: guard, regs: regs, units: unitsRepo, audit: recorder, secureCookie: secureCookie, logger: logger}
}

// LoginRequest is the body for POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/admin/login. Every attempt, successful or not,
// consumes one abuse-guard attempt and is audited.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	ip := c.ClientIP()

	if err := h.guard.AllowLogin(ctx, ip); err != nil {
		h.audit.Record(ctx, audit.ActionAdminLogin, ip, audit.OutcomeDenied, "")
		response.Error(c, err)
		return
	}
	h.guard.RecordLoginAttempt(ctx, ip)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.audit.Record(ctx, audit.ActionAdminLogin, ip, audit.OutcomeFailure, "")
		response.Error(c, apperr.New(apperr.CodeUnauthorized))
		return
	}

	token, err := h.authority.Login(ctx, req.Password)
	if err != nil {
		h.audit.Record(ctx, audit.ActionAdminLogin, ip, audit.OutcomeFailure, "")
		response.Error(c, err)
		return
	}

	h.audit.Record(ctx, audit.ActionAdminLogin, ip, audit.OutcomeSuccess, "")
	maxAge := int(h.authority.TTL().Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
	response.OK(c, gin.H{"loggedIn": true})
}

// Logout handles POST /api/admin/logout. Idempotent.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	if err := h.authority.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), audit.ActionAdminLogout, c.ClientIP(), audit.OutcomeSuccess, "")
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.OK(c, gin.H{"loggedIn": false})
}

// MarkPaid handles PATCH /api/admin/registrations/:id/mark-paid. Idempotent
// when the registration is already PAID.
func (h *Handler) MarkPaid(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperr.New(apperr.CodeNotFound))
		return
	}

	reg, err := h.regs.MarkPaid(ctx, id)
	if err != nil {
		if e := apperr.From(err); e.Code == apperr.CodeInternal {
			h.logger.Error("mark paid failed", zap.Error(err), zap.String("registration_id", id.String()))
		}
		h.audit.Record(ctx, audit.ActionMarkPaid, c.ClientIP(), audit.OutcomeFailure, id.String())
		response.Error(c, err)
		return
	}

	h.audit.Record(ctx, audit.ActionMarkPaid, c.ClientIP(), audit.OutcomeSuccess, id.String())
	response.OK(c, reg)
}

// ListRegistrations handles GET /api/admin/registrations.
func (h *Handler) ListRegistrations(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, total, qErr := h.regs.List(c.Request.Context(), f)
	if qErr != nil {
		h.logger.Error("list registrations failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	respondPage(c, f, list, total)
}

// ListTeams handles GET /api/admin/teams.
func (h *Handler) ListTeams(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, total, qErr := h.regs.ListTeams(c.Request.Context(), f)
	if qErr != nil {
		h.logger.Error("list teams failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	respondPage(c, f, list, total)
}

// ListUnits handles GET /api/admin/units.
func (h *Handler) ListUnits(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, total, qErr := h.units.List(c.Request.Context(), units.ListFilter{Search: f.Search, Offset: f.Offset, Limit: f.Limit})
	if qErr != nil {
		h.logger.Error("list units failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	respondPage(c, f, list, total)
}

// ListLeaders handles GET /api/admin/leaders. Leaders are the units listing
// projected to contacts.
func (h *Handler) ListLeaders(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, total, qErr := h.units.List(c.Request.Context(), units.ListFilter{Search: f.Search, Offset: f.Offset, Limit: f.Limit})
	if qErr != nil {
		h.logger.Error("list leaders failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	leaders := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		leaders = append(leaders, gin.H{
			"leader":   row.Leader,
			"unitName": row.Unit.Name,
		})
	}
	respondPage(c, f, leaders, total)
}

func respondPage(c *gin.Context, f registrations.ListFilter, items interface{}, total int) {
	response.OK(c, gin.H{
		"items":   items,
		"total":   total,
		"page":    f.Offset/f.Limit + 1,
		"perPage": f.Limit,
	})
}

// parseListQuery reads the shared filter/pagination/sort query parameters.
func parseListQuery(c *gin.Context) (registrations.ListFilter, *apperr.Error) {
	f := registrations.ListFilter{Limit: defaultPerPage}

	if v := c.Query("race_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : paramètre race_id mal formé.")
		}
		f.RaceID = &id
	}
	if v := c.Query("unit_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : paramètre unit_id mal formé.")
		}
		f.UnitID = &id
	}
	if v := c.Query("payment_status"); v != "" {
		status := strings.ToUpper(v)
		if status != "PENDING" && status != "PAID" {
			return f, apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : paramètre payment_status inconnu.")
		}
		f.PaymentStatus = status
	}
	f.Search = strings.TrimSpace(c.Query("q"))
	f.Sort = c.Query("sort")
	f.Desc = c.Query("dir") == "desc"

	page := 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if f.Limit > maxPerPage {
		f.Limit = maxPerPage
	}
	f.Offset = (page - 1) * f.Limit
	return f, nil
}
