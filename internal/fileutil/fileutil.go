// Package fileutil provides the filesystem primitives the pipeline relies
// on: crash-tolerant moves into the library and audio-file discovery for the
// stray-file sweep.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// audioExtensions are the container suffixes the sweep treats as audio.
var audioExtensions = map[string]struct{}{
	".m4a":  {},
	".mp3":  {},
	".opus": {},
	".ogg":  {},
	".webm": {},
	".aac":  {},
	".wav":  {},
	".flac": {},
}

// MoveFile relocates src into destDir, keeping the base name. Same-filesystem
// moves use rename; cross-device moves fall back to copy+fsync+remove so the
// destination never holds a partially written file under its final name.
func MoveFile(src, destDir string) (string, error) {
	base := filepath.Base(src)
	dest := filepath.Join(destDir, base)

	err := os.Rename(src, dest)
	if err == nil {
		return dest, nil
	}
	if !isCrossDevice(err) {
		return "", fmt.Errorf("move %q: %w", base, err)
	}

	if err := copyAcrossDevices(src, dest); err != nil {
		return "", fmt.Errorf("move %q across filesystems: %w", base, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove source after copy %q: %w", base, err)
	}
	return dest, nil
}

func copyAcrossDevices(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// Stage under a temp name so a crash mid-copy leaves no partial file at
	// the destination path.
	tmp := dest + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// ListAudioFiles returns the audio files directly inside dir, sorted by name.
// A missing directory yields an empty list.
func ListAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := audioExtensions[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
