package report

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	large := make([]byte, 5000) // spans many encoding blocks
	for i := range large {
		large[i] = byte(i % 251)
	}
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"small", []byte("%PDF-1.4 test")},
		{"large", large},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := base64.StdEncoding.EncodeToString(tc.data)
			got, err := Decode(payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("round trip mismatch: %d bytes in, %d bytes out", len(tc.data), len(got))
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveUsesFixedFilename(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, []byte("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "site-analysis-report.pdf" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		if _, err := Save(dir, []byte("%PDF-1.4 repeat")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only the report file, found %v", names)
	}
}

func TestSaveAsCustomName(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveAs(dir, "job-42-"+Filename, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, "job-42-site-analysis-report.pdf") {
		t.Fatalf("unexpected path %q", path)
	}
}
