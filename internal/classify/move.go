package classify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/otiai10/copy"

	"github.com/hyperjump/shiori/internal/fileid"
)

// ErrTargetExists is returned when a different file already occupies the destination.
var ErrTargetExists = errors.New("a different file already exists at the destination")

// ValidateTopic rejects topic names that cannot be used as a single folder name.
func ValidateTopic(topic string) error {
	switch {
	case strings.TrimSpace(topic) == "":
		return fmt.Errorf("topic is empty")
	case topic == "." || strings.Contains(topic, ".."):
		return fmt.Errorf("invalid topic %q", topic)
	case strings.ContainsAny(topic, `/\`) || strings.ContainsRune(topic, os.PathSeparator):
		return fmt.Errorf("topic %q must not contain path separators", topic)
	}
	return nil
}

// TargetPath returns <dir(path)>/<topic>/<base(path)>. A file whose parent folder is
// already named topic stays where it is.
func TargetPath(path, topic string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == topic {
		return path
	}
	return filepath.Join(dir, topic, filepath.Base(path))
}

// MoveToTopic moves the file at path into its topic folder, creating the folder as
// needed, and returns the new path. An identical file already at the destination
// counts as filed and the source is removed.
func MoveToTopic(path, topic string) (string, error) {
	return moveToTopic(path, topic, os.Rename)
}

func moveToTopic(path, topic string, rename func(string, string) error) (string, error) {
	if err := ValidateTopic(topic); err != nil {
		return "", err
	}
	src, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	dst := TargetPath(src, topic)
	if dst == src {
		return src, nil
	}

	if _, err := os.Lstat(dst); err == nil {
		same, cmpErr := sameContent(src, dst)
		if cmpErr != nil {
			return "", cmpErr
		}
		if !same {
			return "", fmt.Errorf("%s: %w", dst, ErrTargetExists)
		}
		// The filed copy already holds this content; drop the duplicate.
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("failed to remove duplicate %s: %w", src, err)
		}
		return dst, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create topic folder: %w", err)
	}
	if err := rename(src, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return "", fmt.Errorf("failed to move %s: %w", src, err)
		}
		// Rename cannot cross filesystems; copy then remove the original.
		if err := copy.Copy(src, dst); err != nil {
			return "", fmt.Errorf("failed to copy %s: %w", src, err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("copied to %s but failed to remove original: %w", dst, err)
		}
	}
	return dst, nil
}

func sameContent(a, b string) (bool, error) {
	idA, err := fileid.ContentID(a)
	if err != nil {
		return false, err
	}
	idB, err := fileid.ContentID(b)
	if err != nil {
		return false, err
	}
	return idA == idB, nil
}
