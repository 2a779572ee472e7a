// Package csvutil provides the tolerant CSV reader used by the mock
// connectors to load fixture data. No repo in this codebase's lineage
// parses CSV, so this is built directly against encoding/csv rather than
// adapted from an existing reader — see DESIGN.md.
package csvutil

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ReadRecords reads a CSV file with a header row and returns each subsequent
// row as a map from header name to value. Ragged rows (a trailing empty
// field beyond the header's column count,) are tolerated and
// logged at warning; the reader never synthesizes an extra column.
func ReadRecords(ctx context.Context, path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header from %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if len(record) > len(header) {
			// Tolerate a trailing comma producing one extra empty field;
			// never invent a column beyond the header.
			trailingEmpty := true
			for _, extra := range record[len(header):] {
				if strings.TrimSpace(extra) != "" {
					trailingEmpty = false
					break
				}
			}
			if trailingEmpty {
				slog.WarnContext(ctx, "csv row has trailing empty field beyond header width, tolerating",
					"path", path, "columns", len(record), "expected", len(header))
				record = record[:len(header)]
			} else {
				slog.WarnContext(ctx, "csv row has extra non-empty fields beyond header width, truncating",
					"path", path, "columns", len(record), "expected", len(header))
				record = record[:len(header)]
			}
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SplitPipe splits a pipe-delimited multi-value CSV field (e.g.
// affected_services) into its parts, dropping empty segments.
func SplitPipe(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
