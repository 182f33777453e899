//go:build !wasm

package serial

import (
	"path/filepath"
	"testing"
)

func TestOpenRejectsNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestOpenMissingDevice(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "ttyMissing"))
	if p, err := Open(cfg); err == nil {
		p.Close()
		t.Error("Expected error opening a missing device")
	}
}
