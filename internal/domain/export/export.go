package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"parish/internal/domain/tables"
	"parish/internal/domain/translog"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// CSV renders records as comma-separated values with the table's fixed
// column order: id first, then the table's display fields. Missing
// fields render as empty cells.
// PRE: tbl is a registry table
// POST: Returns a CSV document with a header row
func CSV(tbl tables.Table, records []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"id"}, tbl.Fields...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, record := range records {
		row := make([]string, len(header))
		for i, field := range header {
			row[i] = cell(record[field])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// LogsCSV renders transaction log entries with a fixed header order.
// PRE: entries may be empty
// POST: Returns a CSV document with a header row
func LogsCSV(entries []translog.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "table_name", "action", "record_id", "old_data", "new_data", "performed_by", "performed_by_email", "timestamp"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.ID, e.TableName, string(e.Action), e.RecordID,
			e.OldData, e.NewData, e.PerformedBy, e.PerformedByEmail,
			e.Timestamp.Format(dateLayout),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// cell formats a record value for CSV output. JSON-decoded numbers
// arrive as float64; integral values render without a decimal point.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
