package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/shared/testutil"
)

func TestFileValidator_ValidateDataFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				return testutil.NewInjuryTable(testutil.SampleInjuries()...).WriteCSV(t)
			},
		},
		{
			name: "xlsx file",
			setupFunc: func(t *testing.T) string {
				return testutil.NewInjuryTable(testutil.SampleInjuries()...).WriteXLSX(t)
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "injuries.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "injuries.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "not a CSV or XLSX file",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$injuries.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)

			err := validator.ValidateDataFile(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, validator.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe is removed")
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, validator.ValidateOutputFile(filepath.Join(dir, "out.xlsx"), ExtXLSX))
	assert.NoError(t, validator.ValidateOutputFile(filepath.Join(dir, "OUT.XLSX"), ExtXLSX))

	err := validator.ValidateOutputFile(filepath.Join(dir, "out.csv"), ExtXLSX)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have extension .xlsx")
}
