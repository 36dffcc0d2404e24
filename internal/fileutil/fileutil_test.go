package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFileSameFilesystem(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "episode.m4a")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	dest, err := MoveFile(src, destDir)
	if err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if dest != filepath.Join(destDir, "episode.m4a") {
		t.Fatalf("unexpected destination %q", dest)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source should be gone, stat err = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "audio" {
		t.Fatalf("destination content mismatch: %q, %v", data, err)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	if _, err := MoveFile(filepath.Join(t.TempDir(), "nope.m4a"), t.TempDir()); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFileMissingDestination(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "episode.m4a")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, err := MoveFile(src, filepath.Join(srcDir, "missing", "dir")); err == nil {
		t.Fatal("expected error for missing destination directory")
	}
}

func TestListAudioFilesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.m4a", "a.mp3", "notes.txt", "cover.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.m4a"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := ListAudioFiles(dir)
	if err != nil {
		t.Fatalf("ListAudioFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 audio files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.mp3" || filepath.Base(files[1]) != "b.m4a" {
		t.Fatalf("unexpected order: %v", files)
	}
}

func TestListAudioFilesMissingDir(t *testing.T) {
	files, err := ListAudioFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty list, got %v", files)
	}
}
