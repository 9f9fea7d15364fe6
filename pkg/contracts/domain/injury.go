package domain

import (
	"strconv"
	"time"
)

// MatchesPerWindow is the number of matches aggregated in each window
const MatchesPerWindow = 3

// Window identifies the set of matches around an injury absence
type Window string

const (
	WindowBefore Window = "before_injury"
	WindowMissed Window = "missed_match"
	WindowAfter  Window = "after_injury"
)

// Windows lists the windows in table order
var Windows = []Window{WindowBefore, WindowMissed, WindowAfter}

// ResultWin is the literal the source uses for a won match
const ResultWin = "win"

// NullFloat is a numeric cell that may be missing
type NullFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid NullFloat holding v
func Float(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// Null returns a missing NullFloat
func Null() NullFloat {
	return NullFloat{}
}

// Ptr returns nil for a missing value
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Interface returns nil for a missing value and the float otherwise
func (n NullFloat) Interface() interface{} {
	if !n.Valid {
		return nil
	}
	return n.Value
}

// String formats the value for CSV output; missing values become an empty cell
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// MatchStat holds the cleaned cells of one match in a window
type MatchStat struct {
	Result     string  `json:"result"`
	Opposition string  `json:"opposition"`
	GD         float64 `json:"gd"`
	Rating     float64 `json:"player_rating"`
}

// InjuryRecord is one player's injury episode plus every column derived from it.
// Records are built once per load and never mutated after the snapshot is published.
type InjuryRecord struct {
	Row int `json:"row"`

	Name       string     `json:"name"`
	Team       string     `json:"team_name"`
	Position   string     `json:"position"`
	Age        NullFloat  `json:"age"`
	Season     string     `json:"season"`
	FIFARating NullFloat  `json:"fifa_rating"`
	Injury     string     `json:"injury"`
	InjuryDate *time.Time `json:"date_of_injury"`
	ReturnDate *time.Time `json:"date_of_return"`

	Before [MatchesPerWindow]MatchStat `json:"before_injury"`
	Missed [MatchesPerWindow]MatchStat `json:"missed_match"`
	After  [MatchesPerWindow]MatchStat `json:"after_injury"`

	InjuryDurationDays NullFloat `json:"injury_duration_days"`
	InjuryMonth        NullFloat `json:"injury_month"`
	InjuryYear         NullFloat `json:"injury_year"`
	InjuryQuarter      NullFloat `json:"injury_quarter"`
	InjuryWeek         NullFloat `json:"injury_week"`
	InjuryMonthName    string    `json:"injury_month_name"`

	AvgRatingBefore         NullFloat `json:"avg_rating_before"`
	AvgRatingAfter          NullFloat `json:"avg_rating_after"`
	PerformanceDropIndex    NullFloat `json:"performance_drop_index"`
	PerformanceRecoveryRate NullFloat `json:"performance_recovery_rate"`

	TeamAvgGDBefore     NullFloat `json:"team_avg_gd_before"`
	TeamAvgGDDuring     NullFloat `json:"team_avg_gd_during"`
	TeamAvgGDAfter      NullFloat `json:"team_avg_gd_after"`
	TeamPerformanceDrop NullFloat `json:"team_performance_drop"`
	WinRatioBefore      NullFloat `json:"win_ratio_before"`
	WinRatioDuring      NullFloat `json:"win_ratio_during"`

	Severity           Severity            `json:"injury_severity"`
	RecoveryIndex      NullFloat           `json:"recovery_index"`
	TeamImpactSeverity NullFloat           `json:"team_impact_severity"`
	AgeGroup           AgeGroup            `json:"age_group"`
	PerformanceGroup   PerformanceCategory `json:"performance_category"`
}

// Matches returns the three matches of a window
func (r *InjuryRecord) Matches(w Window) *[MatchesPerWindow]MatchStat {
	switch w {
	case WindowBefore:
		return &r.Before
	case WindowMissed:
		return &r.Missed
	default:
		return &r.After
	}
}

// Quarter returns the injury quarter label such as "2019Q4", or "" without an injury date
func (r *InjuryRecord) Quarter() string {
	if r.InjuryDate == nil {
		return ""
	}
	q := (int(r.InjuryDate.Month())-1)/3 + 1
	return strconv.Itoa(r.InjuryDate.Year()) + "Q" + strconv.Itoa(q)
}
