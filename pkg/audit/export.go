package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	FormatJSON   ExportFormat = "json"
	FormatNDJSON ExportFormat = "ndjson"
	FormatCSV    ExportFormat = "csv"
)

// Export writes events to w in the given format.
func Export(w io.Writer, events []*Event, format ExportFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)

	case FormatNDJSON:
		encoder := json.NewEncoder(w)
		for _, event := range events {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("failed to encode event %d: %w", event.ID, err)
			}
		}
		return nil

	case FormatCSV:
		return exportCSV(w, events)

	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportCSV(w io.Writer, events []*Event) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"id", "organization_id", "search_filters", "results_count",
		"client_ip", "user_agent", "response_time_ms", "created_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, event := range events {
		record := []string{
			strconv.FormatInt(event.ID, 10),
			strconv.FormatInt(event.OrganizationID, 10),
			event.Filters,
			strconv.Itoa(event.ResultCount),
			event.ClientIP,
			event.UserAgent,
			strconv.FormatFloat(event.ResponseTimeMS, 'f', 3, 64),
			event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return writer.Error()
}
