package services

import (
	"context"
	"sort"
	"time"

	"footlens/internal/dataprocessing"
	"footlens/pkg/contracts/domain"
)

// recordGroup is the records sharing one key, in table order
type recordGroup struct {
	key     string
	records []domain.InjuryRecord
}

// groupBy groups records by key in order of first appearance
func groupBy(records []domain.InjuryRecord, key func(r *domain.InjuryRecord) string) []recordGroup {
	index := make(map[string]int)
	var groups []recordGroup
	for i := range records {
		k := key(&records[i])
		g, ok := index[k]
		if !ok {
			g = len(groups)
			index[k] = g
			groups = append(groups, recordGroup{key: k})
		}
		groups[g].records = append(groups[g].records, records[i])
	}
	return groups
}

func meanOf(records []domain.InjuryRecord, column string) domain.NullFloat {
	return dataprocessing.NullMean(dataprocessing.ValidValues(records, column))
}

func sumOf(records []domain.InjuryRecord, column string) float64 {
	var sum float64
	for _, v := range dataprocessing.ValidValues(records, column) {
		sum += v
	}
	return sum
}

// nullGreater orders valid values descending with missing values last
func nullGreater(a, b domain.NullFloat) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	return a.Valid && a.Value > b.Value
}

func head[T any](items []T, n int) []T {
	if n < len(items) {
		return items[:n]
	}
	return items
}

func countDistinct(records []domain.InjuryRecord, key func(r *domain.InjuryRecord) string) int {
	seen := make(map[string]bool)
	for i := range records {
		seen[key(&records[i])] = true
	}
	return len(seen)
}

// InjuryQuery narrows the injury analysis. Empty fields select everything.
type InjuryQuery struct {
	Injury   string `json:"injury,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// InjuryTypeSummary aggregates one injury type
type InjuryTypeSummary struct {
	Injury      string           `json:"injury"`
	Cases       int              `json:"cases"`
	AvgRecovery domain.NullFloat `json:"avg_recovery_days"`
	AvgDrop     domain.NullFloat `json:"avg_performance_drop"`
}

// SeverityCount counts injuries in one duration-based severity bucket
type SeverityCount struct {
	Severity domain.Severity `json:"severity"`
	Count    int             `json:"count"`
}

// InjuryAnalysis is the injury tab. Cards follow the query; the tables cover every
// filtered row.
type InjuryAnalysis struct {
	TotalInjuries   int                 `json:"total_injuries"`
	AvgRecovery     domain.NullFloat    `json:"avg_recovery_days"`
	AffectedPlayers int                 `json:"affected_players"`
	AvgDrop         domain.NullFloat    `json:"avg_performance_drop"`
	InjuryTypes     []string            `json:"injury_types"`
	Types           []InjuryTypeSummary `json:"types"`
	Severities      []SeverityCount     `json:"severities"`
}

// durationSeverity is the severity bucket used by the injury tab
func durationSeverity(r *domain.InjuryRecord) domain.Severity {
	return dataprocessing.SeverityByDuration(r.InjuryDurationDays)
}

// Injuries computes the injury analysis tab
func (s *DashboardService) Injuries(ctx context.Context, f Filter, q InjuryQuery) (*InjuryAnalysis, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	narrowed := make([]domain.InjuryRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if q.Injury != "" && r.Injury != q.Injury {
			continue
		}
		if q.Severity != "" && string(durationSeverity(r)) != q.Severity {
			continue
		}
		narrowed = append(narrowed, *r)
	}

	a := &InjuryAnalysis{
		TotalInjuries:   len(narrowed),
		AvgRecovery:     meanOf(narrowed, domain.ColDurationDays),
		AffectedPlayers: countDistinct(narrowed, func(r *domain.InjuryRecord) string { return r.Name }),
		AvgDrop:         meanOf(narrowed, domain.ColPerformanceDrop),
		InjuryTypes:     distinct(records, func(r *domain.InjuryRecord) string { return r.Injury }),
	}

	for _, g := range groupBy(records, func(r *domain.InjuryRecord) string { return r.Injury }) {
		a.Types = append(a.Types, InjuryTypeSummary{
			Injury:      g.key,
			Cases:       len(g.records),
			AvgRecovery: meanOf(g.records, domain.ColDurationDays),
			AvgDrop:     meanOf(g.records, domain.ColPerformanceDrop),
		})
	}
	sort.SliceStable(a.Types, func(i, j int) bool { return a.Types[i].Cases > a.Types[j].Cases })

	for _, g := range groupBy(records, func(r *domain.InjuryRecord) string { return string(durationSeverity(r)) }) {
		a.Severities = append(a.Severities, SeverityCount{Severity: domain.Severity(g.key), Count: len(g.records)})
	}
	sort.SliceStable(a.Severities, func(i, j int) bool { return a.Severities[i].Count > a.Severities[j].Count })

	return a, nil
}

// GroupDrop is the mean performance drop of one group of players
type GroupDrop struct {
	Group   string           `json:"group"`
	Count   int              `json:"count"`
	AvgDrop domain.NullFloat `json:"avg_performance_drop"`
}

// PlayerImpact is the player performance tab
type PlayerImpact struct {
	ByPosition []GroupDrop `json:"by_position"`
	ByAgeGroup []GroupDrop `json:"by_age_group"`
}

func groupDrops(groups []recordGroup) []GroupDrop {
	out := make([]GroupDrop, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupDrop{Group: g.key, Count: len(g.records), AvgDrop: meanOf(g.records, domain.ColPerformanceDrop)})
	}
	return out
}

// Players computes mean drop by position, largest first, and by age group in age order
func (s *DashboardService) Players(ctx context.Context, f Filter) (*PlayerImpact, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	positions := groupDrops(groupBy(records, func(r *domain.InjuryRecord) string { return r.Position }))
	sort.SliceStable(positions, func(i, j int) bool { return nullGreater(positions[i].AvgDrop, positions[j].AvgDrop) })

	byAge := groupBy(records, func(r *domain.InjuryRecord) string { return string(r.AgeGroup) })
	rank := make(map[string]int, len(domain.AgeGroups))
	for i, g := range domain.AgeGroups {
		rank[string(g)] = i
	}
	ages := make([]GroupDrop, 0, len(byAge))
	for _, g := range groupDrops(byAge) {
		// Rows outside every age bin have no group
		if _, ok := rank[g.Group]; ok {
			ages = append(ages, g)
		}
	}
	sort.SliceStable(ages, func(i, j int) bool { return rank[ages[i].Group] < rank[ages[j].Group] })

	return &PlayerImpact{ByPosition: positions, ByAgeGroup: ages}, nil
}

// TeamQuery narrows the team cards to one team. Empty selects every team.
type TeamQuery struct {
	Team string `json:"team,omitempty"`
}

// TeamSummary aggregates one team
type TeamSummary struct {
	Team              string           `json:"team_name"`
	Injuries          int              `json:"injuries"`
	SevereInjuries    int              `json:"severe_injuries"`
	AvgTeamDrop       domain.NullFloat `json:"avg_team_drop"`
	AvgImpactSeverity domain.NullFloat `json:"avg_team_impact_severity"`
}

// TeamImpact is the team impact tab
type TeamImpact struct {
	TotalTeams     int              `json:"total_teams"`
	TotalInjuries  int              `json:"total_injuries"`
	SevereInjuries int              `json:"severe_injuries"`
	AvgTeamDrop    domain.NullFloat `json:"avg_team_drop"`
	MostAffected   []TeamSummary    `json:"most_affected"`
	LeastAffected  []TeamSummary    `json:"least_affected"`
	Teams          []TeamSummary    `json:"teams"`
}

// longAbsences counts injuries lasting more than ModerateDurationLimit days
func longAbsences(records []domain.InjuryRecord) int {
	n := 0
	for i := range records {
		d := records[i].InjuryDurationDays
		if d.Valid && d.Value > dataprocessing.ModerateDurationLimit {
			n++
		}
	}
	return n
}

// Teams computes the team impact tab
func (s *DashboardService) Teams(ctx context.Context, f Filter, q TeamQuery) (*TeamImpact, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	narrowed := records
	if q.Team != "" {
		narrowed = Filter{Teams: []string{q.Team}}.Apply(records)
	}

	t := &TeamImpact{
		TotalTeams:     countDistinct(narrowed, func(r *domain.InjuryRecord) string { return r.Team }),
		TotalInjuries:  len(narrowed),
		SevereInjuries: longAbsences(narrowed),
		AvgTeamDrop:    meanOf(narrowed, domain.ColTeamPerformanceDrop),
	}

	for _, g := range groupBy(records, func(r *domain.InjuryRecord) string { return r.Team }) {
		t.Teams = append(t.Teams, TeamSummary{
			Team:              g.key,
			Injuries:          len(g.records),
			SevereInjuries:    longAbsences(g.records),
			AvgTeamDrop:       meanOf(g.records, domain.ColTeamPerformanceDrop),
			AvgImpactSeverity: meanOf(g.records, domain.ColTeamImpactSeverity),
		})
	}

	most := append([]TeamSummary(nil), t.Teams...)
	sort.SliceStable(most, func(i, j int) bool { return nullGreater(most[i].AvgTeamDrop, most[j].AvgTeamDrop) })
	t.MostAffected = head(most, 5)

	least := append([]TeamSummary(nil), t.Teams...)
	sort.SliceStable(least, func(i, j int) bool {
		a, b := least[i].AvgTeamDrop, least[j].AvgTeamDrop
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value < b.Value
	})
	t.LeastAffected = head(least, 5)

	sort.SliceStable(t.Teams, func(i, j int) bool { return t.Teams[i].Injuries > t.Teams[j].Injuries })
	return t, nil
}

// TrendQuery narrows the trend cards. Zero fields select everything.
type TrendQuery struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// MonthTrend aggregates the injuries of one calendar month across years
type MonthTrend struct {
	Month       int              `json:"month"`
	Name        string           `json:"name"`
	Injuries    int              `json:"injuries"`
	AvgRecovery domain.NullFloat `json:"avg_recovery_days"`
}

// QuarterTrend aggregates the injuries of one quarter such as 2019Q4
type QuarterTrend struct {
	Quarter     string           `json:"quarter"`
	Injuries    int              `json:"injuries"`
	AvgRecovery domain.NullFloat `json:"avg_recovery_days"`
}

// Trends is the time trend tab. Rows without an injury date are left out.
type Trends struct {
	TotalInjuries int              `json:"total_injuries"`
	AvgRecovery   domain.NullFloat `json:"avg_recovery_days"`
	Players       int              `json:"players"`
	Teams         int              `json:"teams"`
	Years         []int            `json:"years"`
	From          string           `json:"from,omitempty"`
	To            string           `json:"to,omitempty"`
	Monthly       []MonthTrend     `json:"monthly"`
	Quarterly     []QuarterTrend   `json:"quarterly"`
}

// Trends computes the time trend tab
func (s *DashboardService) Trends(ctx context.Context, f Filter, q TrendQuery) (*Trends, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}

	dated := make([]domain.InjuryRecord, 0, len(records))
	for _, r := range records {
		if r.InjuryDate != nil {
			dated = append(dated, r)
		}
	}
	if len(dated) == 0 {
		return nil, ErrNoRecords
	}

	narrowed := make([]domain.InjuryRecord, 0, len(dated))
	years := map[int]bool{}
	var from, to time.Time
	for _, r := range dated {
		d := *r.InjuryDate
		years[d.Year()] = true
		if from.IsZero() || d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
		if q.Year != 0 && d.Year() != q.Year {
			continue
		}
		if q.Month != 0 && int(d.Month()) != q.Month {
			continue
		}
		narrowed = append(narrowed, r)
	}

	t := &Trends{
		TotalInjuries: len(narrowed),
		AvgRecovery:   meanOf(narrowed, domain.ColDurationDays),
		Players:       countDistinct(narrowed, func(r *domain.InjuryRecord) string { return r.Name }),
		Teams:         countDistinct(narrowed, func(r *domain.InjuryRecord) string { return r.Team }),
		From:          from.Format(domain.DateLayout),
		To:            to.Format(domain.DateLayout),
	}
	for y := range years {
		t.Years = append(t.Years, y)
	}
	sort.Ints(t.Years)

	for _, g := range groupBy(dated, func(r *domain.InjuryRecord) string { return r.InjuryDate.Format("01") }) {
		m := g.records[0].InjuryDate.Month()
		t.Monthly = append(t.Monthly, MonthTrend{
			Month:       int(m),
			Name:        m.String(),
			Injuries:    len(g.records),
			AvgRecovery: meanOf(g.records, domain.ColDurationDays),
		})
	}
	sort.Slice(t.Monthly, func(i, j int) bool { return t.Monthly[i].Month < t.Monthly[j].Month })

	for _, g := range groupBy(dated, func(r *domain.InjuryRecord) string { return r.Quarter() }) {
		t.Quarterly = append(t.Quarterly, QuarterTrend{
			Quarter:     g.key,
			Injuries:    len(g.records),
			AvgRecovery: meanOf(g.records, domain.ColDurationDays),
		})
	}
	sort.Slice(t.Quarterly, func(i, j int) bool { return t.Quarterly[i].Quarter < t.Quarterly[j].Quarter })

	return t, nil
}

// StatsColumns are the columns summarised by the statistics tab
var StatsColumns = []string{
	domain.ColAge,
	domain.ColFIFARating,
	domain.ColDurationDays,
	domain.ColPerformanceDrop,
	domain.ColTeamPerformanceDrop,
}

// Stats describes StatsColumns over the filtered rows
func (s *DashboardService) Stats(ctx context.Context, f Filter) ([]dataprocessing.Summary, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return Describe(records), nil
}

// Describe summarises StatsColumns over records
func Describe(records []domain.InjuryRecord) []dataprocessing.Summary {
	out := make([]dataprocessing.Summary, 0, len(StatsColumns))
	for _, c := range StatsColumns {
		out = append(out, dataprocessing.Describe(c, dataprocessing.ValidValues(records, c)))
	}
	return out
}
