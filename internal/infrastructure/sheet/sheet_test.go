package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("Anomalies.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = DetectFormat("/tmp/export.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, format)

	_, err = DetectFormat("report.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecodeTextStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Criticité;Système")...)
	text, err := DecodeText(data)
	require.NoError(t, err)
	assert.Equal(t, "Criticité;Système", text)
}

func TestDecodeTextFallsBackToWindows1252(t *testing.T) {
	data := []byte("Criticit\xe9,Disponibilit\xe9")
	text, err := DecodeText(data)
	require.NoError(t, err)
	assert.Equal(t, "Criticité,Disponibilité", text)
}

func TestReadWorkbookRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Num_equipement", "Systeme", "Description"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"EQ-1", "Turbine", "Fuite"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := ReadWorkbookRows(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"EQ-1", "Turbine", "Fuite"}, rows[1])
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got.Format)
	assert.Equal(t, "batch.csv", got.Name)
	assert.Equal(t, "a,b\n1,2\n", got.Text)
	assert.Nil(t, got.Rows)
}

func TestReadRejectsGarbageWorkbook(t *testing.T) {
	_, err := Read("bad.xlsx", FormatExcel, bytes.NewReader([]byte("not a zip")))
	assert.Error(t, err)
}
