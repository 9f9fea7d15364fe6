package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/config"
	"footlens/internal/shared/testutil"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	writer := NewCSVWriter(&config.Paths{ExportDir: filepath.Join(tempDir, "exports")}, logger)
	return writer, tempDir
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewCSVWriter(t *testing.T) {
	writer := NewCSVWriter(nil, nil)

	assert.NotNil(t, writer)
	assert.NotNil(t, writer.paths)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		wantPath string
		wantBOM  bool
	}{
		{
			name:     "relative path goes to export directory",
			filePath: "report.csv",
			options: WriteOptions{
				Headers: []string{"Name", "Team Name"},
				Records: [][]string{{"Harry Kane", "Tottenham"}},
			},
			wantPath: filepath.Join(tempDir, "exports", "report.csv"),
		},
		{
			name:     "absolute path kept with BOM",
			filePath: filepath.Join(tempDir, "nested", "dir", "bom.csv"),
			options: WriteOptions{
				Headers:   []string{"Name"},
				Records:   [][]string{{"Bukayo Saka"}, {"Virgil van Dijk"}},
				BOMPrefix: true,
			},
			wantPath: filepath.Join(tempDir, "nested", "dir", "bom.csv"),
			wantBOM:  true,
		},
		{
			name:     "header only",
			filePath: "empty.csv",
			options:  WriteOptions{Headers: []string{"Name"}},
			wantPath: filepath.Join(tempDir, "exports", "empty.csv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))

			content, err := os.ReadFile(tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))

			records := readCSVFile(t, tt.wantPath)
			require.Len(t, records, len(tt.options.Records)+1)
			assert.Equal(t, tt.options.Headers, records[0])
			for i, r := range tt.options.Records {
				assert.Equal(t, r, records[i+1])
			}
		})
	}
}

func TestCSVWriter_Overwrites(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	require.NoError(t, writer.WriteCSV("out.csv", WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}, {"2"}}}))
	require.NoError(t, writer.WriteCSV("out.csv", WriteOptions{Headers: []string{"B"}, Records: [][]string{{"3"}}}))

	records := readCSVFile(t, filepath.Join(tempDir, "exports", "out.csv"))
	assert.Equal(t, [][]string{{"B"}, {"3"}}, records)
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"Name", "Injury"}, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"Harry Kane", "Hamstring, left"}))
	require.NoError(t, stream.WriteRecord([]string{"Bukayo Saka", "Bruise"}))
	assert.Equal(t, 2, stream.Rows())
	require.NoError(t, stream.Close())

	records := readCSVFile(t, filepath.Join(tempDir, "exports", "stream.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, "Hamstring, left", records[1][1])
}

func TestCSVWriter_CreateFails(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	// A regular file where the directory should be
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := writer.WriteCSV(filepath.Join(blocker, "out.csv"), WriteOptions{Headers: []string{"A"}})
	assert.Error(t, err)
}
