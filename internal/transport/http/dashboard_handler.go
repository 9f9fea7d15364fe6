package http

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "footlens/internal/errors"
	"footlens/internal/exporter"
	"footlens/internal/services"
	"footlens/internal/validation"
)

// DashboardHandler serves the injury dashboard with RFC 7807 errors
type DashboardHandler struct {
	service        DashboardServiceInterface
	validator      *validation.Validator
	exportFileName string
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. exportFileName names the
// downloaded workbook.
func NewDashboardHandler(service DashboardServiceInterface, exportFileName string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	logger = logger.With(slog.String("component", "dashboard_handler"))
	return &DashboardHandler{
		service:        service,
		validator:      validation.New(logger),
		exportFileName: exportFileName,
		logger:         logger,
		errorHandler:   errorHandler,
	}
}

// Routes returns the dashboard routes. reload wraps the reload endpoint, e.g. with
// audit logging; nil leaves it bare.
func (h *DashboardHandler) Routes(reload ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/warnings", h.GetWarnings)
		r.Get("/filters", h.GetFilters)
		r.Get("/records", h.GetRecords)

		r.Get("/overview", h.GetOverview)
		r.Get("/top-drops", h.GetTopDrops)
		r.Get("/injuries", h.GetInjuries)
		r.Get("/players", h.GetPlayers)
		r.Get("/teams", h.GetTeams)
		r.Get("/trends", h.GetTrends)
		r.Get("/stats", h.GetStats)

		r.Get("/export/preview", h.GetExportPreview)

		r.With(reload...).Post("/reload", h.Reload)
	})

	r.Get("/export", h.DownloadExport)
	r.Post("/export", h.PostExport)

	return r
}

// fail maps service errors onto API errors and renders them
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoSnapshot):
		err = apierrors.ErrDataUnavailable
	case errors.Is(err, services.ErrNoRecords):
		err = apierrors.ErrNoRecords
	case errors.Is(err, services.ErrInvalidColumn):
		err = apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "Unknown export column", err.Error())
	case errors.Is(err, services.ErrReloadUnavailable):
		err = apierrors.New(http.StatusConflict, "RELOAD_UNAVAILABLE", "Snapshot reload is not configured")
	}
	h.errorHandler.HandleError(w, r, err)
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// GetSnapshot handles GET /api/dashboard/snapshot
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, info)
}

// GetWarnings handles GET /api/dashboard/warnings
func (h *DashboardHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.service.Warnings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   warnings,
		"count":  len(warnings),
	})
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, opts)
}

// GetRecords handles GET /api/dashboard/records
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.service.Records(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// GetOverview handles GET /api/dashboard/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	overview, err := h.service.Overview(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, overview)
}

// GetTopDrops handles GET /api/dashboard/top-drops
func (h *DashboardHandler) GetTopDrops(w http.ResponseWriter, r *http.Request) {
	f, limit, err := h.parseTopDrops(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	drops, err := h.service.TopDrops(r.Context(), f, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   drops,
		"count":  len(drops),
	})
}

// GetInjuries handles GET /api/dashboard/injuries
func (h *DashboardHandler) GetInjuries(w http.ResponseWriter, r *http.Request) {
	f, q, err := h.parseInjuryQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	analysis, err := h.service.Injuries(r.Context(), f, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, analysis)
}

// GetPlayers handles GET /api/dashboard/players
func (h *DashboardHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	impact, err := h.service.Players(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, impact)
}

// GetTeams handles GET /api/dashboard/teams
func (h *DashboardHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	impact, err := h.service.Teams(r.Context(), f, services.TeamQuery{Team: r.URL.Query().Get(paramFocusTeam)})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, impact)
}

// GetTrends handles GET /api/dashboard/trends
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	f, q, err := h.parseTrendQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	trends, err := h.service.Trends(r.Context(), f, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, trends)
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, stats)
}

// GetExportPreview handles GET /api/dashboard/export/preview
func (h *DashboardHandler) GetExportPreview(w http.ResponseWriter, r *http.Request) {
	f, columns, err := h.parseExportQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	preview, err := h.service.ExportPreview(r.Context(), f, columns)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, preview)
}

// DownloadExport handles GET /api/dashboard/export
func (h *DashboardHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	f, columns, err := h.parseExportQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeExport(w, r, f, columns)
}

// PostExport handles POST /api/dashboard/export with a JSON ExportRequest body
func (h *DashboardHandler) PostExport(w http.ResponseWriter, r *http.Request) {
	var req validation.ExportRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.fail(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeExport(w, r, toFilter(req.FilterRequest), req.Columns)
}

// writeExport renders the workbook into memory first so failures still produce
// a problem response instead of a truncated download
func (h *DashboardHandler) writeExport(w http.ResponseWriter, r *http.Request, f services.Filter, columns []string) {
	var buf bytes.Buffer
	rows, err := h.service.Export(r.Context(), f, columns, &buf)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exporter.XLSXContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.exportFileName}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("error", err.Error()))
	}
}

// Reload handles POST /api/dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "snapshot reloaded via API",
		slog.String("snapshot_id", info.ID),
		slog.Int("rows", info.Rows),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.respond(w, r, info)
}
