package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"footlens/internal/infrastructure"
	"footlens/pkg/contracts/domain"
)

// Result is the augmented table produced by one pipeline run
type Result struct {
	Records  []domain.InjuryRecord
	Warnings []Warning
}

// build is the working state shared by the stages of one run
type build struct {
	table   *RawTable
	records []domain.InjuryRecord
	warn    *warningSet
}

type stage struct {
	name string
	run  func(b *build)
}

// stages run in this order; each one only reads columns produced before it
var stages = []stage{
	{StageExtract, extractFields},
	{StageDates, parseDates},
	{StageDuration, computeDurations},
	{StageCalendar, decomposeCalendar},
	{StageCleaning, cleanMatchCells},
	{StageRatings, aggregateRatings},
	{StageGoalDiff, aggregateGoalDifference},
	{StageWinRatio, computeWinRatios},
	{StageSeverity, classifySeverities},
	{StageIndices, deriveIndices},
	{StageBinning, binCategories},
	{StageBackfill, backfillMedians},
}

// Pipeline turns a raw injury table into the augmented table
type Pipeline struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:  logger.With(slog.String("component", "pipeline")),
		metrics: metrics,
	}
}

// Run executes every stage over table. Row-level anomalies never abort a run;
// they are collected as warnings and logged once each at WARN level.
func (p *Pipeline) Run(ctx context.Context, table *RawTable) *Result {
	b := &build{
		table:   table,
		records: make([]domain.InjuryRecord, len(table.Rows)),
		warn:    newWarningSet(),
	}

	for _, s := range stages {
		start := time.Now()
		s.run(b)
		elapsed := time.Since(start)

		infrastructure.RecordPipelineStage(ctx, p.metrics, s.name, elapsed)
		p.logger.DebugContext(ctx, "stage complete",
			slog.String("stage", s.name),
			slog.Duration("duration", elapsed))
	}

	warnings := b.warn.warnings()
	for _, w := range warnings {
		p.logger.WarnContext(ctx, "data quality warning",
			slog.String("stage", w.Stage),
			slog.String("column", w.Column),
			slog.Int("count", w.Count),
			slog.Int("first_row", w.FirstRow),
			slog.String("message", w.Message))
	}

	return &Result{Records: b.records, Warnings: warnings}
}

// optionalGroup is a set of match columns whose absence degrades but does not fail a load
type optionalGroup struct {
	columns []string
	message string
}

// optionalGroups lists the optional column groups. Rating columns are reported by the
// rating stage instead.
func optionalGroups() []optionalGroup {
	groups := []optionalGroup{{[]string{domain.ColSeason}, "season left blank"}}
	fields := []struct{ field, message string }{
		{domain.FieldResult, "matches counted as not won"},
		{domain.FieldOpposition, "opposition left blank"},
		{domain.FieldGD, "goal difference treated as 0"},
	}
	for _, w := range domain.Windows {
		for _, f := range fields {
			g := optionalGroup{message: f.message}
			for n := 1; n <= domain.MatchesPerWindow; n++ {
				g.columns = append(g.columns, domain.MatchColumn(n, w, f.field))
			}
			groups = append(groups, g)
		}
	}
	return groups
}

func extractFields(b *build) {
	for _, g := range optionalGroups() {
		if missing := b.table.Missing(g.columns); len(missing) > 0 {
			b.warn.table(StageRead, missing[0], fmt.Sprintf("missing columns %s; %s", strings.Join(missing, ", "), g.message))
		}
	}

	for i := range b.records {
		r := &b.records[i]
		r.Row = i + 1
		r.Name = strings.TrimSpace(b.table.Cell(i, domain.ColName))
		r.Team = strings.TrimSpace(b.table.Cell(i, domain.ColTeam))
		r.Position = strings.TrimSpace(b.table.Cell(i, domain.ColPosition))
		r.Season = strings.TrimSpace(b.table.Cell(i, domain.ColSeason))
		r.Injury = strings.TrimSpace(b.table.Cell(i, domain.ColInjury))

		var bad bool
		if r.Age, bad = ParseNullableNumber(b.table.Cell(i, domain.ColAge)); bad {
			b.warn.row(StageExtract, domain.ColAge, r.Row, "non-numeric value treated as missing")
		}
		if r.FIFARating, bad = ParseNullableNumber(b.table.Cell(i, domain.ColFIFARating)); bad {
			b.warn.row(StageExtract, domain.ColFIFARating, r.Row, "non-numeric value treated as missing")
		}

		for _, w := range domain.Windows {
			matches := r.Matches(w)
			for n := range matches {
				// Results stay verbatim; only the exact literal "win" counts
				matches[n].Result = b.table.Cell(i, domain.MatchColumn(n+1, w, domain.FieldResult))
				matches[n].Opposition = strings.TrimSpace(b.table.Cell(i, domain.MatchColumn(n+1, w, domain.FieldOpposition)))
			}
		}
	}
}

func parseDates(b *build) {
	parse := func(i int, column string) *time.Time {
		raw := b.table.Cell(i, column)
		d, ok := ParseDate(raw)
		if !ok {
			msg := "unparsable date treated as missing"
			if strings.TrimSpace(raw) == "" {
				msg = "missing date"
			}
			b.warn.row(StageDates, column, i+1, msg)
		}
		return d
	}

	for i := range b.records {
		b.records[i].InjuryDate = parse(i, domain.ColInjuryDate)
		b.records[i].ReturnDate = parse(i, domain.ColReturnDate)
	}
}

func computeDurations(b *build) {
	var known []float64
	for i := range b.records {
		r := &b.records[i]
		if r.InjuryDate == nil || r.ReturnDate == nil {
			continue
		}
		days := math.Floor(r.ReturnDate.Sub(*r.InjuryDate).Hours() / 24)
		if days < 0 {
			b.warn.row(StageDuration, domain.ColDurationDays, r.Row, "return date before injury date; duration treated as missing")
			continue
		}
		r.InjuryDurationDays = domain.Float(days)
		known = append(known, days)
	}

	med, ok := Median(known)
	if !ok {
		if len(b.records) > 0 {
			b.warn.table(StageDuration, domain.ColDurationDays, "no row has a usable duration; durations left missing")
		}
		return
	}
	for i := range b.records {
		r := &b.records[i]
		if !r.InjuryDurationDays.Valid {
			r.InjuryDurationDays = domain.Float(med)
			b.warn.row(StageDuration, domain.ColDurationDays, r.Row, fmt.Sprintf("missing duration filled with median %g", med))
		}
	}
}

func decomposeCalendar(b *build) {
	for i := range b.records {
		r := &b.records[i]
		if r.InjuryDate == nil {
			continue
		}
		d := *r.InjuryDate
		_, week := d.ISOWeek()
		r.InjuryMonth = domain.Float(float64(d.Month()))
		r.InjuryYear = domain.Float(float64(d.Year()))
		r.InjuryMonthName = d.Month().String()
		r.InjuryQuarter = domain.Float(float64((int(d.Month())-1)/3 + 1))
		r.InjuryWeek = domain.Float(float64(week))
	}
}

func cleanMatchCells(b *build) {
	for i := range b.records {
		r := &b.records[i]
		for _, w := range domain.Windows {
			matches := r.Matches(w)
			for n := range matches {
				gdCol := domain.MatchColumn(n+1, w, domain.FieldGD)
				gd, bad := CleanMatchValue(b.table.Cell(i, gdCol))
				if bad {
					b.warn.row(StageCleaning, gdCol, r.Row, "unparsable value treated as 0")
				}
				matches[n].GD = gd

				if !domain.HasRating(w) {
					continue
				}
				ratingCol := domain.MatchColumn(n+1, w, domain.FieldRating)
				rating, bad := CleanMatchValue(b.table.Cell(i, ratingCol))
				if bad {
					b.warn.row(StageCleaning, ratingCol, r.Row, "unparsable value treated as 0")
				}
				matches[n].Rating = rating
			}
		}
	}
}

// presentMatches returns the match indices of w whose field column exists in the table
func presentMatches(t *RawTable, w domain.Window, field string) []int {
	var idx []int
	for n := 0; n < domain.MatchesPerWindow; n++ {
		if t.Has(domain.MatchColumn(n+1, w, field)) {
			idx = append(idx, n)
		}
	}
	return idx
}

func aggregateRatings(b *build) {
	before := presentMatches(b.table, domain.WindowBefore, domain.FieldRating)
	after := presentMatches(b.table, domain.WindowAfter, domain.FieldRating)

	if len(before) == 0 || len(after) == 0 {
		b.warn.table(StageRatings, "", "player rating columns missing; rating averages left missing, drop index and recovery rate set to 0")
		for i := range b.records {
			b.records[i].PerformanceDropIndex = domain.Float(0)
			b.records[i].PerformanceRecoveryRate = domain.Float(0)
		}
		return
	}

	ratings := func(m *[domain.MatchesPerWindow]domain.MatchStat, idx []int) []float64 {
		values := make([]float64, len(idx))
		for k, n := range idx {
			values[k] = m[n].Rating
		}
		return values
	}

	for i := range b.records {
		r := &b.records[i]
		r.AvgRatingBefore = NullMean(ratings(&r.Before, before))
		r.AvgRatingAfter = NullMean(ratings(&r.After, after))

		drop := r.AvgRatingBefore.Value - r.AvgRatingAfter.Value
		r.PerformanceDropIndex = domain.Float(drop)
		if r.AvgRatingBefore.Value == 0 {
			r.PerformanceRecoveryRate = domain.Null()
		} else {
			r.PerformanceRecoveryRate = domain.Float(drop / r.AvgRatingBefore.Value * 100)
		}
	}
}

// windowGD averages the goal difference of all three matches; missing columns count as 0
func windowGD(m *[domain.MatchesPerWindow]domain.MatchStat) domain.NullFloat {
	values := make([]float64, len(m))
	for n := range m {
		values[n] = m[n].GD
	}
	return NullMean(values)
}

func aggregateGoalDifference(b *build) {
	for i := range b.records {
		r := &b.records[i]
		r.TeamAvgGDBefore = windowGD(&r.Before)
		r.TeamAvgGDDuring = windowGD(&r.Missed)
		r.TeamAvgGDAfter = windowGD(&r.After)
		r.TeamPerformanceDrop = domain.Float(r.TeamAvgGDBefore.Value - r.TeamAvgGDDuring.Value)
	}
}

// winCount counts the won matches of a window; the column keeps its historical "ratio" name
func winCount(m *[domain.MatchesPerWindow]domain.MatchStat) domain.NullFloat {
	wins := 0
	for n := range m {
		if m[n].Result == domain.ResultWin {
			wins++
		}
	}
	return domain.Float(float64(wins))
}

func computeWinRatios(b *build) {
	for i := range b.records {
		r := &b.records[i]
		r.WinRatioBefore = winCount(&r.Before)
		r.WinRatioDuring = winCount(&r.Missed)
	}
}

func classifySeverities(b *build) {
	for i := range b.records {
		b.records[i].Severity = ClassifySeverity(b.records[i].Injury)
	}
}

func deriveIndices(b *build) {
	for i := range b.records {
		r := &b.records[i]
		if r.InjuryDurationDays.Valid {
			r.RecoveryIndex = domain.Float(r.InjuryDurationDays.Value / 100)
		}
		r.TeamImpactSeverity = domain.Float(math.Abs(r.TeamPerformanceDrop.Value) * r.Severity.Weight())
	}
}

func binCategories(b *build) {
	for i := range b.records {
		r := &b.records[i]
		r.AgeGroup = AgeGroupOf(r.Age)
		r.PerformanceGroup = PerformanceCategoryOf(r.FIFARating)
	}
}

// backfillMedians fills residual gaps in numeric columns with the column median.
// Recovery rate stays missing where the pre-injury average is 0; all-missing
// columns stay missing.
func backfillMedians(b *build) {
	for _, col := range domain.NumericColumns() {
		if col == domain.ColRecoveryRate {
			continue
		}
		med, ok := Median(ValidValues(b.records, col))
		if !ok {
			continue
		}
		msg := fmt.Sprintf("missing value filled with median %g", med)
		for i := range b.records {
			v := b.records[i].NumericField(col)
			if !v.Valid {
				*v = domain.Float(med)
				b.warn.row(StageBackfill, col, b.records[i].Row, msg)
			}
		}
	}
}
