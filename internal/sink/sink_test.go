package sink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmitWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Emit("report.txt", []byte("hello world")); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("data = %q", data)
	}
}

func TestEmitSanitizesPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Emit("../../etc/passwd", []byte("nope")); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "passwd")); err != nil {
		t.Fatalf("expected sanitized file in sink dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "passwd")); !os.IsNotExist(err) {
		t.Fatalf("expected no file written outside sink dir")
	}
}

func TestEmitResolvesNameCollisions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Emit("dup.bin", []byte("first")); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := s.Emit("dup.bin", []byte("second")); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "dup.bin"))
	if err != nil {
		t.Fatalf("ReadFile dup.bin: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "dup-1.bin"))
	if err != nil {
		t.Fatalf("ReadFile dup-1.bin: %v", err)
	}
	if string(first) != "first" || string(second) != "second" {
		t.Fatalf("unexpected contents: %q, %q", first, second)
	}
}
