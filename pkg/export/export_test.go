package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = Dataset{
	Title:   "Algebra timetable",
	Headers: []string{"Day", "Start"},
	Rows: []map[string]string{
		{"Day": "Monday", "Start": "09:00"},
		{"Day": "Wednesday", "Start": "11:30"},
	},
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample)
	require.NoError(t, err)
	assert.Equal(t, "Day,Start\nMonday,09:00\nWednesday,11:30\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sample)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Algebra timetable", title)
	value, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", value)
}

func TestExportersRequireHeaders(t *testing.T) {
	for _, format := range []string{"csv", "pdf", "xlsx"} {
		exporter, err := ForFormat(format)
		require.NoError(t, err)
		_, err = exporter.Render(Dataset{})
		assert.Error(t, err, format)
	}
}

func TestForFormatUnknown(t *testing.T) {
	_, err := ForFormat("docx")
	assert.Error(t, err)
}
