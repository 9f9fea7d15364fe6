package services

import (
	"sort"

	"footlens/pkg/contracts/domain"
)

// Filter selects records. An empty list does not constrain; every non-empty list
// must contain the record's value.
type Filter struct {
	Seasons    []string `json:"seasons,omitempty"`
	Severities []string `json:"severities,omitempty"`
	Positions  []string `json:"positions,omitempty"`
	AgeGroups  []string `json:"age_groups,omitempty"`
	Teams      []string `json:"teams,omitempty"`
	Players    []string `json:"players,omitempty"`
}

func contains(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Matches reports whether r passes every constraint of f
func (f Filter) Matches(r *domain.InjuryRecord) bool {
	return contains(f.Seasons, r.Season) &&
		contains(f.Severities, string(r.Severity)) &&
		contains(f.Positions, r.Position) &&
		contains(f.AgeGroups, string(r.AgeGroup)) &&
		contains(f.Teams, r.Team) &&
		contains(f.Players, r.Name)
}

// Apply returns the matching records in table order
func (f Filter) Apply(records []domain.InjuryRecord) []domain.InjuryRecord {
	out := make([]domain.InjuryRecord, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// FilterOptions lists the distinct values available for each filter
type FilterOptions struct {
	Seasons    []string `json:"seasons"`
	Severities []string `json:"severities"`
	Positions  []string `json:"positions"`
	AgeGroups  []string `json:"age_groups"`
	Teams      []string `json:"teams"`
	Players    []string `json:"players"`
}

// distinct returns the sorted non-empty values of key
func distinct(records []domain.InjuryRecord, key func(r *domain.InjuryRecord) string) []string {
	seen := make(map[string]bool)
	values := []string{}
	for i := range records {
		v := key(&records[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// ordered keeps the values of order that occur in records, in that order
func ordered[T ~string](records []domain.InjuryRecord, order []T, key func(r *domain.InjuryRecord) T) []string {
	present := make(map[T]bool)
	for i := range records {
		present[key(&records[i])] = true
	}
	values := []string{}
	for _, v := range order {
		if present[v] {
			values = append(values, string(v))
		}
	}
	return values
}

func buildOptions(records []domain.InjuryRecord) FilterOptions {
	return FilterOptions{
		Seasons: distinct(records, func(r *domain.InjuryRecord) string { return r.Season }),
		Severities: ordered(records, domain.Severities, func(r *domain.InjuryRecord) domain.Severity {
			return r.Severity
		}),
		Positions: distinct(records, func(r *domain.InjuryRecord) string { return r.Position }),
		AgeGroups: ordered(records, domain.AgeGroups, func(r *domain.InjuryRecord) domain.AgeGroup {
			return r.AgeGroup
		}),
		Teams:   distinct(records, func(r *domain.InjuryRecord) string { return r.Team }),
		Players: distinct(records, func(r *domain.InjuryRecord) string { return r.Name }),
	}
}
