package classify

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateTopic(t *testing.T) {
	for _, ok := range []string{"CV", "NLP", "Computer Vision", "RL-2024"} {
		if err := ValidateTopic(ok); err != nil {
			t.Errorf("ValidateTopic(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", ".", "..", "a/b", `a\b`, "../etc"} {
		if err := ValidateTopic(bad); err == nil {
			t.Errorf("ValidateTopic(%q) should fail", bad)
		}
	}
}

func TestTargetPath(t *testing.T) {
	if got := TargetPath("/p/a.pdf", "NLP"); got != filepath.Join("/p", "NLP", "a.pdf") {
		t.Errorf("TargetPath = %s", got)
	}
	if got := TargetPath("/p/NLP/a.pdf", "NLP"); got != "/p/NLP/a.pdf" {
		t.Errorf("already filed: TargetPath = %s", got)
	}
}

func TestMoveToTopic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "content")

	dst, err := MoveToTopic(src, "CV")
	if err != nil {
		t.Fatalf("MoveToTopic: %v", err)
	}
	if dst != filepath.Join(dir, "CV", "paper.pdf") {
		t.Errorf("dst = %s", dst)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone")
	}
	if b, _ := os.ReadFile(dst); string(b) != "content" {
		t.Errorf("moved content = %q", b)
	}

	// Moving the filed copy again is a no-op.
	again, err := MoveToTopic(dst, "CV")
	if err != nil || again != dst {
		t.Errorf("second move = %s, %v", again, err)
	}
}

func TestMoveToTopic_existingTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "new version")
	writeFile(t, filepath.Join(dir, "NLP", "paper.pdf"), "old version")

	if _, err := MoveToTopic(src, "NLP"); !errors.Is(err, ErrTargetExists) {
		t.Errorf("err = %v, want ErrTargetExists", err)
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "NLP", "paper.pdf")); string(b) != "old version" {
		t.Error("existing file was overwritten")
	}

	same := filepath.Join(dir, "dup.pdf")
	writeFile(t, same, "identical")
	writeFile(t, filepath.Join(dir, "NLP", "dup.pdf"), "identical")
	got, err := MoveToTopic(same, "NLP")
	if err != nil {
		t.Fatalf("identical target: %v", err)
	}
	if got != filepath.Join(dir, "NLP", "dup.pdf") {
		t.Errorf("got %s", got)
	}
	if _, err := os.Stat(same); !os.IsNotExist(err) {
		t.Error("duplicate source should be removed once the filed copy matches")
	}
}

func TestMoveToTopic_invalidTopic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "x")
	if _, err := MoveToTopic(src, "../escape"); err == nil {
		t.Error("expected error for traversal topic")
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source should be untouched")
	}
}

func TestMoveToTopic_crossDeviceFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	writeFile(t, src, "bytes")

	exdev := func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	dst, err := moveToTopic(src, "RL", exdev)
	if err != nil {
		t.Fatalf("moveToTopic: %v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "bytes" {
		t.Errorf("copied content = %q", b)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be removed after copy")
	}

	other := filepath.Join(dir, "other.pdf")
	writeFile(t, other, "x")
	failing := func(string, string) error { return syscall.EACCES }
	if _, err := moveToTopic(other, "RL", failing); err == nil {
		t.Error("expected non-EXDEV rename error to be returned")
	}
}
