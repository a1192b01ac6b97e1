// Package report converts the base64 payload returned by the analysis
// service into a PDF file on disk.
package report

import (
	"encoding/base64"
	"os"
	"path/filepath"
)

// Filename is fixed regardless of the analyzed address.
const Filename = "site-analysis-report.pdf"

// Decode reverses the service's base64 encoding back into PDF bytes.
func Decode(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}

// Save writes the report bytes into dir under the fixed filename and returns
// the written path.
func Save(dir string, data []byte) (string, error) {
	return SaveAs(dir, Filename, data)
}

// SaveAs writes report bytes under an explicit name. The write goes through
// a temp file that is always removed afterwards, so a failed save leaves
// neither a partial report nor a stray handle behind.
func SaveAs(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", err
	}
	return dst, nil
}
