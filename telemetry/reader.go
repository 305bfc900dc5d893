package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// RawRecord is an untyped telemetry line, discriminated by Type.
type RawRecord struct {
	Type string          `json:"_type"`
	Data json.RawMessage `json:"-"`
}

// ReadAll reads every complete line from r as a telemetry record. Extra
// trailing whitespace on a line and an unterminated (truncated) final line
// are tolerated, not errors (§6.3).
func ReadAll(r io.Reader) ([]RawRecord, error) {
	var records []RawRecord
	scanner := bufio.NewScanner(r)
	// Telemetry rows can be large (window payload metadata, not raw
	// samples) but give the scanner generous headroom over the default.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var pending error
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if pending != nil {
			return records, pending
		}
		var typed struct {
			Type string `json:"_type"`
		}
		if err := json.Unmarshal(line, &typed); err != nil {
			// A truncated trailing line is tolerated by simply stopping;
			// anything else mid-stream is a genuine format error.
			pending = fmt.Errorf("telemetry: malformed record: %w", err)
			continue
		}
		records = append(records, RawRecord{Type: typed.Type, Data: append(json.RawMessage(nil), line...)})
	}
	if err := scanner.Err(); err != nil {
		return records, err
	}
	return records, nil
}
