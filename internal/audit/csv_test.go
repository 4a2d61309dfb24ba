package audit

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/docvault/backend/internal/models"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	detail := `renamed "Q3 report, draft" to "Q3 report, final"`
	agent := `Mozilla/5.0 ("compatible", test)`

	records := []models.AuditRecord{
		{
			CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			ActorUsername: "alice",
			OperationType: models.OpDocumentUpdate,
			Detail:        detail,
			IPAddress:     "10.0.0.7",
			UserAgent:     agent,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"timestamp", "username", "operationType", "detail", "ipAddress", "userAgent"}, rows[0])
	assert.Equal(t, "2026-03-01 09:30:00", rows[1][0])
	assert.Equal(t, "alice", rows[1][1])
	assert.Equal(t, "DocumentUpdate", rows[1][2])
	// Commas and embedded quotes must survive the round trip unchanged.
	assert.Equal(t, detail, rows[1][3])
	assert.Equal(t, agent, rows[1][5])
}

func TestWriteCSVQuoteEscaping(t *testing.T) {
	records := []models.AuditRecord{
		{
			CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			ActorUsername: "bob",
			OperationType: models.OpDocumentDelete,
			Detail:        `deleted "draft"`,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	// Internal quotes are doubled on the wire.
	assert.Contains(t, buf.String(), `"deleted ""draft"""`)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1) // header only
}
