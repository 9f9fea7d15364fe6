package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"footlens/pkg/contracts/domain"
)

// InjuryRow describes one source row as raw cell text. Match cells that are
// left empty are written as empty cells.
type InjuryRow struct {
	Name       string
	Team       string
	Position   string
	Age        string
	Season     string
	FIFARating string
	Injury     string
	InjuryDate string
	ReturnDate string

	BeforeRatings [3]string
	AfterRatings  [3]string

	BeforeResults [3]string
	MissedResults [3]string
	AfterResults  [3]string

	BeforeGD [3]string
	MissedGD [3]string
	AfterGD  [3]string
}

// InjuryTable is a raw table ready to be written as CSV or XLSX
type InjuryTable struct {
	Header []string
	Rows   [][]string
}

// InjuryHeader returns the full source header
func InjuryHeader() []string {
	header := []string{
		domain.ColName, domain.ColTeam, domain.ColPosition, domain.ColAge, domain.ColSeason,
		domain.ColFIFARating, domain.ColInjury, domain.ColInjuryDate, domain.ColReturnDate,
	}
	for _, w := range domain.Windows {
		for n := 1; n <= domain.MatchesPerWindow; n++ {
			if domain.HasRating(w) {
				header = append(header, domain.MatchColumn(n, w, domain.FieldRating))
			}
			header = append(header,
				domain.MatchColumn(n, w, domain.FieldResult),
				domain.MatchColumn(n, w, domain.FieldOpposition),
				domain.MatchColumn(n, w, domain.FieldGD),
			)
		}
	}
	return header
}

func (r InjuryRow) cells() map[string]string {
	m := map[string]string{
		domain.ColName:       r.Name,
		domain.ColTeam:       r.Team,
		domain.ColPosition:   r.Position,
		domain.ColAge:        r.Age,
		domain.ColSeason:     r.Season,
		domain.ColFIFARating: r.FIFARating,
		domain.ColInjury:     r.Injury,
		domain.ColInjuryDate: r.InjuryDate,
		domain.ColReturnDate: r.ReturnDate,
	}
	for i := 0; i < domain.MatchesPerWindow; i++ {
		n := i + 1
		m[domain.MatchColumn(n, domain.WindowBefore, domain.FieldRating)] = r.BeforeRatings[i]
		m[domain.MatchColumn(n, domain.WindowAfter, domain.FieldRating)] = r.AfterRatings[i]
		m[domain.MatchColumn(n, domain.WindowBefore, domain.FieldResult)] = r.BeforeResults[i]
		m[domain.MatchColumn(n, domain.WindowMissed, domain.FieldResult)] = r.MissedResults[i]
		m[domain.MatchColumn(n, domain.WindowAfter, domain.FieldResult)] = r.AfterResults[i]
		m[domain.MatchColumn(n, domain.WindowBefore, domain.FieldGD)] = r.BeforeGD[i]
		m[domain.MatchColumn(n, domain.WindowMissed, domain.FieldGD)] = r.MissedGD[i]
		m[domain.MatchColumn(n, domain.WindowAfter, domain.FieldGD)] = r.AfterGD[i]
	}
	return m
}

// NewInjuryTable builds a table with the full source header
func NewInjuryTable(rows ...InjuryRow) *InjuryTable {
	tb := &InjuryTable{Header: InjuryHeader()}
	for _, r := range rows {
		cells := r.cells()
		row := make([]string, len(tb.Header))
		for i, col := range tb.Header {
			row[i] = cells[col]
		}
		tb.Rows = append(tb.Rows, row)
	}
	return tb
}

// WithoutColumns returns a copy of the table with every column matching drop removed
func (tb *InjuryTable) WithoutColumns(drop func(column string) bool) *InjuryTable {
	var keep []int
	out := &InjuryTable{}
	for i, col := range tb.Header {
		if !drop(col) {
			keep = append(keep, i)
			out.Header = append(out.Header, col)
		}
	}
	for _, row := range tb.Rows {
		projected := make([]string, len(keep))
		for j, i := range keep {
			projected[j] = row[i]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// WriteCSV writes the table to a CSV file in a temporary directory and returns its path
func (tb *InjuryTable) WriteCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "injuries.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(tb.Header))
	require.NoError(t, w.WriteAll(tb.Rows))
	return path
}

// WriteXLSX writes the table to the first sheet of a workbook as text cells and returns its path
func (tb *InjuryTable) WriteXLSX(t *testing.T) string {
	t.Helper()
	return tb.writeXLSX(t, "injuries.xlsx", func(_ string, v string) interface{} { return v })
}

// WriteTypedXLSX writes the table the way a spreadsheet user would: numeric
// cells as numbers and parseable dates as date-typed cells.
func (tb *InjuryTable) WriteTypedXLSX(t *testing.T) string {
	t.Helper()
	return tb.writeXLSX(t, "injuries_typed.xlsx", func(column, v string) interface{} {
		if column == domain.ColInjuryDate || column == domain.ColReturnDate {
			for _, layout := range []string{domain.DateLayout, "Jan 2, 2006"} {
				if d, err := time.Parse(layout, v); err == nil {
					return d
				}
			}
			return v
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return v
	})
}

func (tb *InjuryTable) writeXLSX(t *testing.T, name string, cell func(column, v string) interface{}) string {
	path := filepath.Join(t.TempDir(), name)
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	write := func(rowIdx int, values []interface{}) {
		ref, err := excelize.CoordinatesToCellName(1, rowIdx)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &values))
	}

	header := make([]interface{}, len(tb.Header))
	for i, h := range tb.Header {
		header[i] = h
	}
	write(1, header)
	for i, r := range tb.Rows {
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = cell(tb.Header[j], v)
		}
		write(i+2, row)
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// SampleInjuries returns a small, fully populated dataset covering every severity bucket
func SampleInjuries() []InjuryRow {
	return []InjuryRow{
		{
			Name: "Harry Kane", Team: "Tottenham", Position: "Center Forward", Age: "26", Season: "2019/20",
			FIFARating: "89", Injury: "Hamstring Injury", InjuryDate: "Jan 1, 2020", ReturnDate: "Jun 13, 2020",
			BeforeRatings: [3]string{"7.5", "8(S)", "6.9"},
			AfterRatings:  [3]string{"6.8", "7.1", "N.A."},
			BeforeResults: [3]string{"win", "draw", "win"},
			MissedResults: [3]string{"lose", "win", "draw"},
			AfterResults:  [3]string{"win", "win", "lose"},
			BeforeGD:      [3]string{"2", "0", "1"},
			MissedGD:      [3]string{"-1", "2", "0"},
			AfterGD:       [3]string{"3", "1", "-2"},
		},
		{
			Name: "Virgil van Dijk", Team: "Liverpool", Position: "Center Back", Age: "29", Season: "2020/21",
			FIFARating: "90", Injury: "Cruciate Ligament Rupture", InjuryDate: "Oct 17, 2020", ReturnDate: "Aug 14, 2021",
			BeforeRatings: [3]string{"7.2", "7", "7.4"},
			AfterRatings:  [3]string{"6.9", "7.0", "7.1"},
			BeforeResults: [3]string{"win", "win", "draw"},
			MissedResults: [3]string{"draw", "lose", "lose"},
			AfterResults:  [3]string{"win", "draw", "win"},
			BeforeGD:      [3]string{"1", "2", "0"},
			MissedGD:      [3]string{"0", "-1", "-2"},
			AfterGD:       [3]string{"1", "0", "2"},
		},
		{
			Name: "Bukayo Saka", Team: "Arsenal", Position: "Right Winger", Age: "20", Season: "2021/22",
			FIFARating: "78", Injury: "Bruise", InjuryDate: "Mar 5, 2022", ReturnDate: "Mar 19, 2022",
			BeforeRatings: [3]string{"7.0", "6.5", "7.5"},
			AfterRatings:  [3]string{"7.2", "6.8", "7.3"},
			BeforeResults: [3]string{"lose", "win", "win"},
			MissedResults: [3]string{"win", "win", "win"},
			AfterResults:  [3]string{"draw", "win", "win"},
			BeforeGD:      [3]string{"-1", "1", "2"},
			MissedGD:      [3]string{"1", "3", "1"},
			AfterGD:       [3]string{"0", "2", "1"},
		},
	}
}
