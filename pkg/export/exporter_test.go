package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersInHeaderOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Roll Number", "Name", "Venue", "Seat"},
		Rows: []map[string]string{
			{"Roll Number": "R1", "Name": "One", "Venue": "Hall A", "Seat": "1"},
			{"Roll Number": "R2", "Name": "Two, With Comma", "Venue": "Hall B", "Seat": "2"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	content := string(out)
	assert.Equal(t, "Roll Number,Name,Venue,Seat\nR1,One,Hall A,1\nR2,\"Two, With Comma\",Hall B,2\n", content)
}

func TestCSVExporterMissingCellsStayEmpty(t *testing.T) {
	data := Dataset{
		Headers: []string{"a", "b"},
		Rows:    []map[string]string{{"a": "1"}},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"Roll Number", "Seat"},
		Rows:    []map[string]string{{"Roll Number": "R1", "Seat": "1"}},
	}

	out, err := NewPDFExporter().Render(data, "Seating Plan")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
