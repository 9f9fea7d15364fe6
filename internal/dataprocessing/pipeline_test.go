package dataprocessing

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/shared/testutil"
	"footlens/pkg/contracts/domain"
)

func runPipeline(t *testing.T, tb *testutil.InjuryTable) *Result {
	t.Helper()
	table, err := ReadTable(tb.WriteCSV(t))
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)
	return NewPipeline(logger, nil).Run(context.Background(), table)
}

func warningsFor(res *Result, stage string) []Warning {
	var out []Warning
	for _, w := range res.Warnings {
		if w.Stage == stage {
			out = append(out, w)
		}
	}
	return out
}

func TestPipelineSampleDataset(t *testing.T) {
	res := runPipeline(t, testutil.NewInjuryTable(testutil.SampleInjuries()...))
	require.Len(t, res.Records, 3)
	assert.Empty(t, res.Warnings)

	kane := res.Records[0]
	assert.Equal(t, 1, kane.Row)
	assert.Equal(t, "Harry Kane", kane.Name)
	assert.Equal(t, 164.0, kane.InjuryDurationDays.Value)
	assert.Equal(t, 1.0, kane.InjuryMonth.Value)
	assert.Equal(t, 2020.0, kane.InjuryYear.Value)
	assert.Equal(t, "January", kane.InjuryMonthName)
	assert.Equal(t, 1.0, kane.InjuryQuarter.Value)
	assert.Equal(t, 1.0, kane.InjuryWeek.Value)
	assert.InDelta(t, 7.4667, kane.AvgRatingBefore.Value, 1e-4)
	assert.InDelta(t, 4.6333, kane.AvgRatingAfter.Value, 1e-4)
	assert.InDelta(t, 2.8333, kane.PerformanceDropIndex.Value, 1e-4)
	assert.InDelta(t, 37.9464, kane.PerformanceRecoveryRate.Value, 1e-3)
	assert.InDelta(t, 1.0, kane.TeamAvgGDBefore.Value, 1e-9)
	assert.InDelta(t, 1.0/3, kane.TeamAvgGDDuring.Value, 1e-9)
	assert.InDelta(t, 2.0/3, kane.TeamPerformanceDrop.Value, 1e-9)
	assert.Equal(t, 2.0, kane.WinRatioBefore.Value)
	assert.Equal(t, 1.0, kane.WinRatioDuring.Value)
	assert.Equal(t, domain.SeverityModerate, kane.Severity)
	assert.InDelta(t, 1.64, kane.RecoveryIndex.Value, 1e-9)
	assert.InDelta(t, 2.0/3, kane.TeamImpactSeverity.Value, 1e-9)
	assert.Equal(t, domain.AgeGroupPrime, kane.AgeGroup)
	assert.Equal(t, domain.PerformanceElite, kane.PerformanceGroup)

	vvd := res.Records[1]
	assert.Equal(t, 301.0, vvd.InjuryDurationDays.Value)
	assert.Equal(t, domain.SeveritySevere, vvd.Severity)
	assert.InDelta(t, 2.0, vvd.TeamPerformanceDrop.Value, 1e-9)
	assert.InDelta(t, 3.0, vvd.TeamImpactSeverity.Value, 1e-9)
	assert.Equal(t, domain.AgeGroupExperienced, vvd.AgeGroup)

	saka := res.Records[2]
	assert.Equal(t, 14.0, saka.InjuryDurationDays.Value)
	assert.Equal(t, domain.SeverityMinor, saka.Severity)
	assert.InDelta(t, 0.7, saka.TeamImpactSeverity.Value, 1e-9)
	assert.Equal(t, domain.AgeGroupYoung, saka.AgeGroup)
	assert.Equal(t, domain.PerformanceGood, saka.PerformanceGroup)
	assert.Equal(t, 3.0, saka.WinRatioDuring.Value)
}

func TestPipelineRatingAverageCountsMissingAsZero(t *testing.T) {
	row := testutil.SampleInjuries()[0]
	row.BeforeRatings = [3]string{"7.2", "N.A.", "6.8"}

	res := runPipeline(t, testutil.NewInjuryTable(row))
	assert.InDelta(t, 4.67, res.Records[0].AvgRatingBefore.Value, 0.005)
}

func TestPipelineDurationAndDurationSeverity(t *testing.T) {
	row := testutil.SampleInjuries()[2]
	row.InjuryDate = "2020-01-01"
	row.ReturnDate = "2020-01-31"

	rec := runPipeline(t, testutil.NewInjuryTable(row)).Records[0]
	assert.Equal(t, 30.0, rec.InjuryDurationDays.Value)
	assert.Equal(t, domain.SeverityModerate, SeverityByDuration(rec.InjuryDurationDays))
}

func TestPipelineTeamImpactWeight(t *testing.T) {
	res := runPipeline(t, testutil.NewInjuryTable(testutil.SampleInjuries()...))
	for _, r := range res.Records {
		want := abs(r.TeamPerformanceDrop.Value) * r.Severity.Weight()
		assert.InDelta(t, want, r.TeamImpactSeverity.Value, 1e-9, r.Name)
		if r.Severity == domain.SeveritySevere {
			assert.InDelta(t, abs(r.TeamPerformanceDrop.Value)*1.5, r.TeamImpactSeverity.Value, 1e-9)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestPipelineRecoveryRateNullOnlyWhenBeforeIsZero(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[1].BeforeRatings = [3]string{"N.A.", "", "N.A."}

	res := runPipeline(t, testutil.NewInjuryTable(rows...))
	for _, r := range res.Records {
		assert.Equal(t, r.AvgRatingBefore.Value == 0, !r.PerformanceRecoveryRate.Valid, r.Name)
	}
	assert.False(t, res.Records[1].PerformanceRecoveryRate.Valid)
}

func TestPipelineMissingRatingColumns(t *testing.T) {
	tb := testutil.NewInjuryTable(testutil.SampleInjuries()...).
		WithoutColumns(func(c string) bool { return strings.HasSuffix(c, domain.FieldRating) })

	res := runPipeline(t, tb)
	require.Len(t, res.Records, 3)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StageRatings, res.Warnings[0].Stage)

	for _, r := range res.Records {
		assert.True(t, r.PerformanceDropIndex.Valid)
		assert.Zero(t, r.PerformanceDropIndex.Value)
		assert.False(t, r.AvgRatingBefore.Valid)
		assert.False(t, r.AvgRatingAfter.Valid)
		v, ok := r.Value(domain.ColPerformanceDrop)
		assert.True(t, ok)
		assert.Equal(t, 0.0, v)
	}
}

func TestPipelineMissingOptionalColumns(t *testing.T) {
	tb := testutil.NewInjuryTable(testutil.SampleInjuries()...).
		WithoutColumns(func(c string) bool {
			return strings.HasPrefix(c, "Match") && strings.HasSuffix(c, domain.FieldGD) && strings.Contains(c, string(domain.WindowMissed))
		})

	res := runPipeline(t, tb)
	read := warningsFor(res, StageRead)
	require.Len(t, read, 1)
	assert.Contains(t, read[0].Message, "goal difference treated as 0")

	for _, r := range res.Records {
		assert.Zero(t, r.TeamAvgGDDuring.Value)
	}
}

func TestPipelineDurationMedianFill(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[2].ReturnDate = ""

	res := runPipeline(t, testutil.NewInjuryTable(rows...))
	saka := res.Records[2]
	assert.Nil(t, saka.ReturnDate)
	assert.Equal(t, (164.0+301.0)/2, saka.InjuryDurationDays.Value)
	assert.InDelta(t, 2.325, saka.RecoveryIndex.Value, 1e-9)

	dates := warningsFor(res, StageDates)
	require.Len(t, dates, 1)
	assert.Equal(t, domain.ColReturnDate, dates[0].Column)
	assert.Equal(t, 3, dates[0].FirstRow)

	durations := warningsFor(res, StageDuration)
	require.Len(t, durations, 1)
	assert.Equal(t, 1, durations[0].Count)
}

func TestPipelineNegativeDuration(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[0].ReturnDate = "Dec 1, 2019"

	res := runPipeline(t, testutil.NewInjuryTable(rows...))
	assert.Equal(t, (301.0+14.0)/2, res.Records[0].InjuryDurationDays.Value)

	durations := warningsFor(res, StageDuration)
	require.Len(t, durations, 2)
	assert.Contains(t, durations[0].Message, "return date before injury date")
}

func TestPipelineNoUsableDuration(t *testing.T) {
	rows := testutil.SampleInjuries()
	for i := range rows {
		rows[i].ReturnDate = "unknown"
	}

	res := runPipeline(t, testutil.NewInjuryTable(rows...))
	for _, r := range res.Records {
		assert.False(t, r.InjuryDurationDays.Valid)
		assert.False(t, r.RecoveryIndex.Valid)
		assert.True(t, r.InjuryMonth.Valid)
	}

	dates := warningsFor(res, StageDates)
	require.Len(t, dates, 1)
	assert.Equal(t, 3, dates[0].Count)
	assert.NotEmpty(t, warningsFor(res, StageDuration))
}

func TestPipelineUnparsableInjuryDate(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[1].InjuryDate = "sometime in autumn"

	res := runPipeline(t, testutil.NewInjuryTable(rows...))
	vvd := res.Records[1]
	assert.Nil(t, vvd.InjuryDate)
	assert.Equal(t, "", vvd.InjuryMonthName)
	assert.Equal(t, "", vvd.Quarter())

	// Calendar columns are numeric and get the residual median backfill
	assert.True(t, vvd.InjuryYear.Valid)
	assert.Equal(t, 2021.0, vvd.InjuryYear.Value)
	assert.NotEmpty(t, warningsFor(res, StageBackfill))
}

func TestPipelineCleaningWarnings(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[0].BeforeGD = [3]string{"two", "0", "1"}
	rows[2].BeforeGD = [3]string{"?", "1", "2"}
	rows[1].Age = "unknown"

	res := runPipeline(t, testutil.NewInjuryTable(rows...))

	cleaning := warningsFor(res, StageCleaning)
	require.Len(t, cleaning, 1)
	assert.Equal(t, domain.MatchColumn(1, domain.WindowBefore, domain.FieldGD), cleaning[0].Column)
	assert.Equal(t, 2, cleaning[0].Count)
	assert.Equal(t, 1, cleaning[0].FirstRow)
	assert.Zero(t, res.Records[0].Before[0].GD)

	extract := warningsFor(res, StageExtract)
	require.Len(t, extract, 1)
	assert.Equal(t, domain.ColAge, extract[0].Column)

	// Age is backfilled with the median of 26 and 20 after binning has run
	assert.Equal(t, 23.0, res.Records[1].Age.Value)
	assert.Equal(t, domain.AgeGroup(""), res.Records[1].AgeGroup)
}

func TestPipelineNonFiniteCells(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[0].BeforeRatings = [3]string{"7.2", "NaN", "6.8"}
	rows[0].BeforeGD = [3]string{"Inf", "0", "1"}
	rows[1].FIFARating = "-inf"

	res := runPipeline(t, testutil.NewInjuryTable(rows...))

	kane := res.Records[0]
	assert.InDelta(t, 14.0/3, kane.AvgRatingBefore.Value, 1e-9)
	assert.InDelta(t, 1.0/3, kane.TeamAvgGDBefore.Value, 1e-9)
	assert.True(t, kane.PerformanceRecoveryRate.Valid)

	var columns []string
	for _, w := range warningsFor(res, StageCleaning) {
		columns = append(columns, w.Column)
	}
	assert.ElementsMatch(t, []string{
		domain.MatchColumn(2, domain.WindowBefore, domain.FieldRating),
		domain.MatchColumn(1, domain.WindowBefore, domain.FieldGD),
	}, columns)

	extract := warningsFor(res, StageExtract)
	require.Len(t, extract, 1)
	assert.Equal(t, domain.ColFIFARating, extract[0].Column)

	_, err := json.Marshal(res)
	assert.NoError(t, err)
}

func TestPipelineWinCountIsExact(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[0].BeforeResults = [3]string{"win", " win", "Win"}
	rows[0].MissedResults = [3]string{"win ", "win", "draw"}

	res := runPipeline(t, testutil.NewInjuryTable(rows...))

	assert.Equal(t, 1.0, res.Records[0].WinRatioBefore.Value)
	assert.Equal(t, 1.0, res.Records[0].WinRatioDuring.Value)
	assert.Equal(t, " win", res.Records[0].Before[1].Result)
}

func TestPipelineRerunIsIdentical(t *testing.T) {
	tb := testutil.NewInjuryTable(testutil.SampleInjuries()...)
	first, err := json.Marshal(runPipeline(t, tb))
	require.NoError(t, err)
	second, err := json.Marshal(runPipeline(t, tb))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestPipelineCSVAndXLSXAgree(t *testing.T) {
	tb := testutil.NewInjuryTable(testutil.SampleInjuries()...)
	logger, _ := testutil.NewTestLogger(t)

	csvTable, err := ReadTable(tb.WriteCSV(t))
	require.NoError(t, err)
	xlsxTable, err := ReadTable(tb.WriteXLSX(t))
	require.NoError(t, err)

	p := NewPipeline(logger, nil)
	assert.Equal(t, p.Run(context.Background(), csvTable), p.Run(context.Background(), xlsxTable))
}

func TestPipelineCSVAndTypedXLSXAgree(t *testing.T) {
	tb := testutil.NewInjuryTable(testutil.SampleInjuries()...)
	logger, _ := testutil.NewTestLogger(t)

	csvTable, err := ReadTable(tb.WriteCSV(t))
	require.NoError(t, err)
	xlsxTable, err := ReadTable(tb.WriteTypedXLSX(t))
	require.NoError(t, err)

	p := NewPipeline(logger, nil)
	want := p.Run(context.Background(), csvTable)
	got := p.Run(context.Background(), xlsxTable)

	require.NotNil(t, got.Records[0].InjuryDate)
	assert.Empty(t, warningsFor(got, StageDates))
	assert.Equal(t, want.Records, got.Records)
}

func TestPipelineLogsWarnings(t *testing.T) {
	rows := testutil.SampleInjuries()
	rows[0].InjuryDate = "garbage"

	table, err := ReadTable(testutil.NewInjuryTable(rows...).WriteCSV(t))
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	NewPipeline(logger, nil).Run(context.Background(), table)

	assert.True(t, handler.ContainsMessage("data quality warning"))
	assert.True(t, handler.ContainsAttr("column", domain.ColInjuryDate))
}

func TestPipelineEmptyTable(t *testing.T) {
	res := runPipeline(t, testutil.NewInjuryTable())
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Warnings)
}
