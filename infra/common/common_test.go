package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestSourceHashIgnoresDocsAndInfra(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example\n")
	writeFile(t, filepath.Join(root, "internal", "services", "guide.go"), "package services\n")

	before, err := SourceHash(root)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}

	writeFile(t, filepath.Join(root, "DESIGN.md"), "notes")
	writeFile(t, filepath.Join(root, "infra", "main.go"), "package main\n")
	after, err := SourceHash(root)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}
	if before != after {
		t.Fatalf("docs and infra changes should not change the hash")
	}

	writeFile(t, filepath.Join(root, "internal", "services", "guide.go"), "package services\n\n// changed\n")
	changed, err := SourceHash(root)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}
	if changed == before {
		t.Fatalf("source change should change the hash")
	}
}

func TestSourceHashDependsOnPaths(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "cmd", "api", "cmd.go"), "package main\n")
	writeFile(t, filepath.Join(b, "cmd", "guide", "cmd.go"), "package main\n")

	ha, err := SourceHash(a)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}
	hb, err := SourceHash(b)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}
	if ha == hb {
		t.Fatalf("moving a file should change the hash")
	}
}

func TestLabels(t *testing.T) {
	labels := Labels("history")
	if len(labels) != 2 || labels["app"] == nil || labels["component"] == nil {
		t.Fatalf("unexpected labels: %v", labels)
	}
}
