package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apierrors "footlens/internal/errors"
	"footlens/internal/services"
	"footlens/internal/validation"
)

// Query parameters. List parameters repeat, e.g. ?team=Arsenal&team=Chelsea.
const (
	paramSeason   = "season"
	paramSeverity = "severity"
	paramPosition = "position"
	paramAgeGroup = "age_group"
	paramTeam     = "team"
	paramPlayer   = "player"
	paramColumn   = "column"
	paramLimit    = "limit"
	paramInjury   = "injury"
	// injury_severity narrows by the duration bucket, not the keyword severity filter
	paramInjurySeverity = "injury_severity"
	paramFocusTeam      = "focus_team"
	paramYear           = "year"
	paramMonth          = "month"
)

func filterFromQuery(q url.Values) validation.FilterRequest {
	return validation.FilterRequest{
		Seasons:    q[paramSeason],
		Severities: q[paramSeverity],
		Positions:  q[paramPosition],
		AgeGroups:  q[paramAgeGroup],
		Teams:      q[paramTeam],
		Players:    q[paramPlayer],
	}
}

func toFilter(req validation.FilterRequest) services.Filter {
	return services.Filter{
		Seasons:    req.Seasons,
		Severities: req.Severities,
		Positions:  req.Positions,
		AgeGroups:  req.AgeGroups,
		Teams:      req.Teams,
		Players:    req.Players,
	}
}

// intParam parses an optional integer query parameter; absent means 0
func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be a valid integer", name))
	}
	return n, nil
}

// parseFilter reads and validates the filter of r
func (h *DashboardHandler) parseFilter(r *http.Request) (services.Filter, error) {
	req := filterFromQuery(r.URL.Query())
	if err := h.validator.Struct(req); err != nil {
		return services.Filter{}, err
	}
	return toFilter(req), nil
}

func (h *DashboardHandler) parseTopDrops(r *http.Request) (services.Filter, int, error) {
	q := r.URL.Query()
	limit, err := intParam(q, paramLimit)
	if err != nil {
		return services.Filter{}, 0, err
	}
	req := validation.TopDropsRequest{FilterRequest: filterFromQuery(q), Limit: limit}
	if err := h.validator.Struct(req); err != nil {
		return services.Filter{}, 0, err
	}
	return toFilter(req.FilterRequest), req.Limit, nil
}

func (h *DashboardHandler) parseInjuryQuery(r *http.Request) (services.Filter, services.InjuryQuery, error) {
	q := r.URL.Query()
	req := validation.InjuryQueryRequest{
		FilterRequest: filterFromQuery(q),
		Injury:        q.Get(paramInjury),
		Severity:      q.Get(paramInjurySeverity),
	}
	if err := h.validator.Struct(req); err != nil {
		return services.Filter{}, services.InjuryQuery{}, err
	}
	return toFilter(req.FilterRequest), services.InjuryQuery{Injury: req.Injury, Severity: req.Severity}, nil
}

func (h *DashboardHandler) parseTrendQuery(r *http.Request) (services.Filter, services.TrendQuery, error) {
	q := r.URL.Query()
	year, err := intParam(q, paramYear)
	if err != nil {
		return services.Filter{}, services.TrendQuery{}, err
	}
	month, err := intParam(q, paramMonth)
	if err != nil {
		return services.Filter{}, services.TrendQuery{}, err
	}
	req := validation.TrendQueryRequest{FilterRequest: filterFromQuery(q), Year: year, Month: month}
	if err := h.validator.Struct(req); err != nil {
		return services.Filter{}, services.TrendQuery{}, err
	}
	return toFilter(req.FilterRequest), services.TrendQuery{Year: req.Year, Month: req.Month}, nil
}

func (h *DashboardHandler) parseExportQuery(r *http.Request) (services.Filter, []string, error) {
	q := r.URL.Query()
	req := validation.ExportRequest{FilterRequest: filterFromQuery(q), Columns: q[paramColumn]}
	if err := h.validator.Struct(req); err != nil {
		return services.Filter{}, nil, err
	}
	return toFilter(req.FilterRequest), req.Columns, nil
}
