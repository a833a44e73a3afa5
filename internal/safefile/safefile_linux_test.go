//go:build linux

package safefile

import (
	"errors"
	"os"
	"testing"
)

// /proc/self/mem is a regular file whose first page is unmapped, so it
// opens fine and then fails on read.
const unreadable = "/proc/self/mem"

func TestReadFile_ReadError(t *testing.T) {
	f, _, err := OpenRegular(unreadable)
	if err != nil {
		t.Skipf("%s not available: %v", unreadable, err)
	}
	f.Close()

	_, err = ReadFile(unreadable, 0)
	if !errors.Is(err, ErrRead) {
		t.Fatalf("ReadFile() error = %v, want ErrRead", err)
	}
	if errors.Is(err, ErrNotRegularFile) || errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want a read error only", err)
	}
}

func TestReadFile_OpenErrorIsNotReadError(t *testing.T) {
	_, err := ReadFile("/nonexistent/uart.log", 0)
	if errors.Is(err, ErrRead) {
		t.Errorf("ReadFile() error = %v, must not match ErrRead", err)
	}
}
