package runlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points_data.csv")
	w := NewWriter(path)

	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// first run: starting balance 100, ending 175, empty prior ledger
	require.NoError(t, w.Append(Record{Date: day1, EarnedPoints: 175, PointsDifference: 175}))

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "EarnedPoints", "PointsDifference"}, rows[0])
	assert.Equal(t, []string{"2024-03-01", "175", "175"}, rows[1])

	// second run: ledger 175, ending balance 230
	day2 := day1.AddDate(0, 0, 1)
	require.NoError(t, w.Append(Record{Date: day2, EarnedPoints: 230, PointsDifference: 55}))

	rows = readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-03-02", "230", "55"}, rows[2])
}

func TestWriter_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points_data.csv")

	require.NoError(t, NewWriter(path).Append(Record{Date: time.Now(), EarnedPoints: 1, PointsDifference: 1}))
	// a fresh writer on an existing file must not repeat the header
	require.NoError(t, NewWriter(path).Append(Record{Date: time.Now(), EarnedPoints: 2, PointsDifference: 1}))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.NotEqual(t, "Date", rows[1][0])
	assert.NotEqual(t, "Date", rows[2][0])
}
