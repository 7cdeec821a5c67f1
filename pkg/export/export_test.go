package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWritesHeadersAndRows(t *testing.T) {
	buf := &bytes.Buffer{}
	err := NewCSVExporter().Write(buf, Dataset{
		Headers: []string{"id", "name"},
		Rows:    [][]string{{"1", "Amina"}, {"2", "Karim, Jr."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Amina\n2,\"Karim, Jr.\"\n", buf.String())
}

func TestCSVRequiresHeaders(t *testing.T) {
	assert.Error(t, NewCSVExporter().Write(&bytes.Buffer{}, Dataset{}))
}

func TestPDFProducesDocument(t *testing.T) {
	buf := &bytes.Buffer{}
	err := NewPDFExporter().Write(buf, Dataset{
		Title:   "students",
		Headers: []string{"id", "name"},
		Rows:    [][]string{{"1", "Amina"}, {"2"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestForFormat(t *testing.T) {
	r, ok := ForFormat("")
	require.True(t, ok)
	assert.Equal(t, "csv", r.Extension())

	r, ok = ForFormat("pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", r.ContentType())

	_, ok = ForFormat("xlsx")
	assert.False(t, ok)
}
