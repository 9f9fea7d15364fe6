package domain

import (
	"fmt"
	"time"
)

// DateLayout is the layout dates are written in
const DateLayout = "2006-01-02"

// Source header names
const (
	ColName       = "Name"
	ColTeam       = "Team Name"
	ColPosition   = "Position"
	ColAge        = "Age"
	ColSeason     = "Season"
	ColFIFARating = "FIFA rating"
	ColInjury     = "Injury"
	ColInjuryDate = "Date of Injury"
	ColReturnDate = "Date of return"
)

// Match cell kinds
const (
	FieldResult     = "Result"
	FieldOpposition = "Opposition"
	FieldGD         = "GD"
	FieldRating     = "Player_rating"
)

// Derived column names
const (
	ColDurationDays        = "Injury_Duration_Days"
	ColInjuryMonth         = "Injury_Month"
	ColInjuryYear          = "Injury_Year"
	ColInjuryMonthName     = "Injury_Month_Name"
	ColInjuryQuarter       = "Injury_Quarter"
	ColInjuryWeek          = "Injury_Week"
	ColAvgRatingBefore     = "Avg_Rating_Before_Injury"
	ColAvgRatingAfter      = "Avg_Rating_After_Injury"
	ColPerformanceDrop     = "Performance_Drop_Index"
	ColRecoveryRate        = "Performance_Recovery_Rate"
	ColAvgGDBefore         = "Avg_GD_Before"
	ColAvgGDDuring         = "Team_Performance_During_Absence"
	ColAvgGDAfter          = "Avg_GD_After"
	ColTeamPerformanceDrop = "Team_Performance_Drop"
	ColWinRatioBefore      = "Win_Ratio_Before"
	ColWinRatioDuring      = "Win_Ratio_During"
	ColSeverity            = "Injury_Severity"
	ColRecoveryIndex       = "Recovery_Index"
	ColTeamImpactSeverity  = "Team_Impact_Severity"
	ColAgeGroup            = "Age_Group"
	ColPerformanceCategory = "Performance_Category"
)

// RequiredColumns must be present in the source header for a load to succeed
var RequiredColumns = []string{
	ColName, ColTeam, ColPosition, ColAge, ColFIFARating, ColInjury, ColInjuryDate, ColReturnDate,
}

// ExportColumns is the default spreadsheet projection
var ExportColumns = []string{
	ColName,
	ColTeam,
	ColPosition,
	ColInjury,
	ColSeverity,
	ColDurationDays,
	ColAvgRatingBefore,
	ColAvgRatingAfter,
	ColPerformanceDrop,
	ColRecoveryRate,
}

// MatchColumn returns the source header of a match cell, e.g. Match2_missed_match_GD
func MatchColumn(n int, w Window, field string) string {
	return fmt.Sprintf("Match%d_%s_%s", n, w, field)
}

// HasRating reports whether the source carries player ratings for a window.
// Players do not play the matches they miss, so that window has none.
func HasRating(w Window) bool {
	return w != WindowMissed
}

type columnAccessor struct {
	value   func(r *InjuryRecord) interface{}
	numeric func(r *InjuryRecord) *NullFloat
}

var (
	// Columns lists every raw and derived column in table order
	Columns   []string
	accessors = map[string]columnAccessor{}
)

func register(name string, acc columnAccessor) {
	Columns = append(Columns, name)
	accessors[name] = acc
}

func text(f func(r *InjuryRecord) string) columnAccessor {
	return columnAccessor{value: func(r *InjuryRecord) interface{} { return f(r) }}
}

func number(f func(r *InjuryRecord) *NullFloat) columnAccessor {
	return columnAccessor{
		value:   func(r *InjuryRecord) interface{} { return f(r).Interface() },
		numeric: f,
	}
}

func date(f func(r *InjuryRecord) *time.Time) columnAccessor {
	return columnAccessor{value: func(r *InjuryRecord) interface{} {
		d := f(r)
		if d == nil {
			return nil
		}
		return d.Format(DateLayout)
	}}
}

func init() {
	register(ColName, text(func(r *InjuryRecord) string { return r.Name }))
	register(ColTeam, text(func(r *InjuryRecord) string { return r.Team }))
	register(ColPosition, text(func(r *InjuryRecord) string { return r.Position }))
	register(ColAge, number(func(r *InjuryRecord) *NullFloat { return &r.Age }))
	register(ColSeason, text(func(r *InjuryRecord) string { return r.Season }))
	register(ColFIFARating, number(func(r *InjuryRecord) *NullFloat { return &r.FIFARating }))
	register(ColInjury, text(func(r *InjuryRecord) string { return r.Injury }))
	register(ColInjuryDate, date(func(r *InjuryRecord) *time.Time { return r.InjuryDate }))
	register(ColReturnDate, date(func(r *InjuryRecord) *time.Time { return r.ReturnDate }))

	for _, w := range Windows {
		w := w
		for i := 0; i < MatchesPerWindow; i++ {
			i := i
			register(MatchColumn(i+1, w, FieldResult), text(func(r *InjuryRecord) string { return r.Matches(w)[i].Result }))
			register(MatchColumn(i+1, w, FieldOpposition), text(func(r *InjuryRecord) string { return r.Matches(w)[i].Opposition }))
			register(MatchColumn(i+1, w, FieldGD), columnAccessor{value: func(r *InjuryRecord) interface{} { return r.Matches(w)[i].GD }})
			if HasRating(w) {
				register(MatchColumn(i+1, w, FieldRating), columnAccessor{value: func(r *InjuryRecord) interface{} { return r.Matches(w)[i].Rating }})
			}
		}
	}

	register(ColDurationDays, number(func(r *InjuryRecord) *NullFloat { return &r.InjuryDurationDays }))
	register(ColInjuryMonth, number(func(r *InjuryRecord) *NullFloat { return &r.InjuryMonth }))
	register(ColInjuryYear, number(func(r *InjuryRecord) *NullFloat { return &r.InjuryYear }))
	register(ColInjuryMonthName, text(func(r *InjuryRecord) string { return r.InjuryMonthName }))
	register(ColInjuryQuarter, number(func(r *InjuryRecord) *NullFloat { return &r.InjuryQuarter }))
	register(ColInjuryWeek, number(func(r *InjuryRecord) *NullFloat { return &r.InjuryWeek }))
	register(ColAvgRatingBefore, number(func(r *InjuryRecord) *NullFloat { return &r.AvgRatingBefore }))
	register(ColAvgRatingAfter, number(func(r *InjuryRecord) *NullFloat { return &r.AvgRatingAfter }))
	register(ColPerformanceDrop, number(func(r *InjuryRecord) *NullFloat { return &r.PerformanceDropIndex }))
	register(ColRecoveryRate, number(func(r *InjuryRecord) *NullFloat { return &r.PerformanceRecoveryRate }))
	register(ColAvgGDBefore, number(func(r *InjuryRecord) *NullFloat { return &r.TeamAvgGDBefore }))
	register(ColAvgGDDuring, number(func(r *InjuryRecord) *NullFloat { return &r.TeamAvgGDDuring }))
	register(ColAvgGDAfter, number(func(r *InjuryRecord) *NullFloat { return &r.TeamAvgGDAfter }))
	register(ColTeamPerformanceDrop, number(func(r *InjuryRecord) *NullFloat { return &r.TeamPerformanceDrop }))
	register(ColWinRatioBefore, number(func(r *InjuryRecord) *NullFloat { return &r.WinRatioBefore }))
	register(ColWinRatioDuring, number(func(r *InjuryRecord) *NullFloat { return &r.WinRatioDuring }))
	register(ColSeverity, text(func(r *InjuryRecord) string { return string(r.Severity) }))
	register(ColRecoveryIndex, number(func(r *InjuryRecord) *NullFloat { return &r.RecoveryIndex }))
	register(ColTeamImpactSeverity, number(func(r *InjuryRecord) *NullFloat { return &r.TeamImpactSeverity }))
	register(ColAgeGroup, text(func(r *InjuryRecord) string { return string(r.AgeGroup) }))
	register(ColPerformanceCategory, text(func(r *InjuryRecord) string { return string(r.PerformanceGroup) }))
}

// HasColumn reports whether name is an addressable column
func HasColumn(name string) bool {
	_, ok := accessors[name]
	return ok
}

// Value returns the cell of the named column. Missing numeric cells and dates are nil.
func (r *InjuryRecord) Value(column string) (interface{}, bool) {
	acc, ok := accessors[column]
	if !ok {
		return nil, false
	}
	return acc.value(r), true
}

// NumericField returns the nullable numeric cell of the named column, or nil when the
// column is not a nullable numeric column
func (r *InjuryRecord) NumericField(column string) *NullFloat {
	acc, ok := accessors[column]
	if !ok || acc.numeric == nil {
		return nil
	}
	return acc.numeric(r)
}

// NumericColumns lists the nullable numeric columns in table order
func NumericColumns() []string {
	var cols []string
	for _, c := range Columns {
		if accessors[c].numeric != nil {
			cols = append(cols, c)
		}
	}
	return cols
}
