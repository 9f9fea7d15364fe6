package dataprocessing

import "fmt"

// Stage names, in execution order
const (
	StageRead     = "read"
	StageExtract  = "extract"
	StageDates    = "date_parsing"
	StageDuration = "duration"
	StageCalendar = "calendar"
	StageCleaning = "value_cleaning"
	StageRatings  = "rating_aggregates"
	StageGoalDiff = "goal_difference"
	StageWinRatio = "win_ratio"
	StageSeverity = "severity"
	StageIndices  = "derived_indices"
	StageBinning  = "binning"
	StageBackfill = "backfill"
)

// Warning is a non-fatal anomaly found while building the table. Row-level
// anomalies of the same kind in the same column are folded into one warning.
type Warning struct {
	Stage    string `json:"stage"`
	Column   string `json:"column,omitempty"`
	Count    int    `json:"count"`
	FirstRow int    `json:"first_row,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.Column == "":
		return fmt.Sprintf("%s: %s", w.Stage, w.Message)
	case w.Count == 0:
		return fmt.Sprintf("%s: %s: %s", w.Stage, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s (%d rows, first row %d)", w.Stage, w.Column, w.Message, w.Count, w.FirstRow)
}

type warningKey struct {
	stage, column, message string
}

// warningSet keeps warnings in first-seen order
type warningSet struct {
	list  []Warning
	index map[warningKey]int
}

func newWarningSet() *warningSet {
	return &warningSet{index: make(map[warningKey]int)}
}

// row counts one anomalous row
func (s *warningSet) row(stage, column string, row int, message string) {
	key := warningKey{stage, column, message}
	if i, ok := s.index[key]; ok {
		s.list[i].Count++
		return
	}
	s.index[key] = len(s.list)
	s.list = append(s.list, Warning{Stage: stage, Column: column, Count: 1, FirstRow: row, Message: message})
}

// table records a warning about the table as a whole
func (s *warningSet) table(stage, column, message string) {
	s.list = append(s.list, Warning{Stage: stage, Column: column, Message: message})
}

func (s *warningSet) warnings() []Warning {
	out := make([]Warning, len(s.list))
	copy(out, s.list)
	return out
}
