package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSinkWritesSystemInfoFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.ndjson")
	sink, err := Create(path, SystemInfo{Host: "testhost", OS: "linux", CPUCount: 8}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := sink.WriteRow(WindowRow{RunID: 1, WindowIndex: 0}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := sink.WriteRow(WindowRow{RunID: 1, WindowIndex: 1}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	records, err := ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Type != "system_info" {
		t.Fatalf("first record type = %q, want system_info", records[0].Type)
	}
	for i, r := range records[1:] {
		if r.Type != "window" {
			t.Fatalf("record %d type = %q, want window", i+1, r.Type)
		}
	}
}

func TestReadAllTruncatedTrailingLine(t *testing.T) {
	data := []byte(`{"_type":"system_info","host":"h"}` + "\n" + `{"_type":"window","window_index":0}` + "\n" + `{"_type":"window","window_in`)
	records, err := ReadAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (truncated trailing line dropped)", len(records))
	}
}
