package admin

import (
	"encoding/csv"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/internal/registrations"
	"github.com/raid-scout/backend/internal/units"
	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/response"
)

const exportDateLayout = "02/01/2006 15:04"

// exportBatch is the page size used to drain listings for CSV exports.
const exportBatch = 500

// CSV column headers are part of the export contract and stay in French.
var (
	registrationHeaders = []string{"ID", "Unité", "Course", "Nombre de participants", "Prix total", "Statut de paiement", "Date d'inscription"}
	teamHeaders         = []string{"Équipe", "Unité", "Course", "Nombre de participants", "Date de création"}
	unitHeaders         = []string{"Unité", "Région", "Responsable", "Email", "Téléphone", "Date de création"}
	leaderHeaders       = []string{"Prénom", "Nom", "Email", "Téléphone", "Unité", "Date de création"}
)

func paymentStatusLabel(s models.PaymentStatus) string {
	if s == models.PaymentPaid {
		return "Payé"
	}
	return "En attente"
}

func registrationRecords(rows []registrations.RegistrationRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ID.String(),
			r.UnitName,
			r.RaceName,
			strconv.Itoa(r.TotalParticipants),
			r.TotalPrice.StringFixed(2),
			paymentStatusLabel(r.PaymentStatus),
			r.CreatedAt.Format(exportDateLayout),
		})
	}
	return records
}

func teamRecords(rows []registrations.TeamRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, t := range rows {
		records = append(records, []string{
			t.Name,
			t.UnitName,
			t.RaceName,
			strconv.Itoa(t.ParticipantCount),
			t.CreatedAt.Format(exportDateLayout),
		})
	}
	return records
}

func unitRecords(rows []units.UnitRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, u := range rows {
		region := ""
		if u.Unit.Region != nil {
			region = *u.Unit.Region
		}
		records = append(records, []string{
			u.Unit.Name,
			region,
			u.Leader.FirstName + " " + u.Leader.LastName,
			u.Leader.Email,
			u.Leader.Phone,
			u.Unit.CreatedAt.Format(exportDateLayout),
		})
	}
	return records
}

func leaderRecords(rows []units.UnitRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, u := range rows {
		records = append(records, []string{
			u.Leader.FirstName,
			u.Leader.LastName,
			u.Leader.Email,
			u.Leader.Phone,
			u.Unit.Name,
			u.Leader.CreatedAt.Format(exportDateLayout),
		})
	}
	return records
}

// collectPages drains a paged listing into CSV records. An export covers
// every matched row; fetching stops on the first short page.
func collectPages(batch int, fetch func(offset, limit int) ([][]string, error)) ([][]string, error) {
	var records [][]string
	for offset := 0; ; offset += batch {
		page, err := fetch(offset, batch)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < batch {
			return records, nil
		}
	}
}

// ExportRegistrations handles GET /api/admin/registrations.csv.
func (h *Handler) ExportRegistrations(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, qErr := collectPages(exportBatch, func(offset, limit int) ([][]string, error) {
		f.Offset, f.Limit = offset, limit
		rows, _, err := h.regs.List(c.Request.Context(), f)
		return registrationRecords(rows), err
	})
	if qErr != nil {
		h.logger.Error("export registrations failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	h.writeCSV(c, "inscriptions.csv", registrationHeaders, records)
}

// ExportTeams handles GET /api/admin/teams.csv.
func (h *Handler) ExportTeams(c *gin.Context) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, qErr := collectPages(exportBatch, func(offset, limit int) ([][]string, error) {
		f.Offset, f.Limit = offset, limit
		rows, _, err := h.regs.ListTeams(c.Request.Context(), f)
		return teamRecords(rows), err
	})
	if qErr != nil {
		h.logger.Error("export teams failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	h.writeCSV(c, "equipes.csv", teamHeaders, records)
}

// ExportUnits handles GET /api/admin/units.csv.
func (h *Handler) ExportUnits(c *gin.Context) {
	h.exportUnitRows(c, "unites.csv", unitHeaders, unitRecords)
}

// ExportLeaders handles GET /api/admin/leaders.csv.
func (h *Handler) ExportLeaders(c *gin.Context) {
	h.exportUnitRows(c, "responsables.csv", leaderHeaders, leaderRecords)
}

func (h *Handler) exportUnitRows(c *gin.Context, filename string, headers []string, project func([]units.UnitRow) [][]string) {
	f, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, qErr := collectPages(exportBatch, func(offset, limit int) ([][]string, error) {
		rows, _, err := h.units.List(c.Request.Context(), units.ListFilter{Search: f.Search, Offset: offset, Limit: limit})
		return project(rows), err
	})
	if qErr != nil {
		h.logger.Error("export units failed", zap.Error(qErr))
		response.Error(c, apperr.Internal(qErr))
		return
	}
	h.writeCSV(c, filename, headers, records)
}

func (h *Handler) writeCSV(c *gin.Context, filename string, headers []string, records [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	w := csv.NewWriter(c.Writer)
	if err := w.Write(headers); err != nil {
		h.logger.Error("csv write failed", zap.Error(err))
		return
	}
	if err := w.WriteAll(records); err != nil {
		h.logger.Error("csv write failed", zap.Error(err))
	}
}

