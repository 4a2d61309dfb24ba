package audit

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kestrelworks/docvault/backend/internal/models"
)

// csvHeader is the column layout consumed by the external reporting tool.
var csvHeader = []string{"timestamp", "username", "operationType", "detail", "ipAddress", "userAgent"}

const csvTimeLayout = "2006-01-02 15:04:05"

// WriteCSV streams records to w in the reporting export format. Fields
// containing the delimiter or quotes are quoted with internal quotes doubled
// (RFC 4180), so a round-trip through any CSV reader preserves them exactly.
func WriteCSV(w io.Writer, records []models.AuditRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.CreatedAt.Format(csvTimeLayout),
			rec.ActorUsername,
			string(rec.OperationType),
			rec.Detail,
			rec.IPAddress,
			rec.UserAgent,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
