package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	mainGo := filepath.Join(dir, "main.go")
	if err := os.WriteFile(mainGo, []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := wt.Add("main.go"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := os.WriteFile(mainGo, []byte("package main\n\nfunc main() { /* changed */ }\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := wt.Add("main.go"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := wt.Commit("touch up main", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	return dir
}

func TestRecentChangesReturnsCommitsNewestFirst(t *testing.T) {
	dir := initTestRepo(t)
	h, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	commits, err := h.RecentChanges("main.go", 10)
	if err != nil {
		t.Fatalf("RecentChanges: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("len(commits) = %d, want 2: %+v", len(commits), commits)
	}
	if commits[0].Message != "touch up main" {
		t.Fatalf("commits[0].Message = %q, want %q", commits[0].Message, "touch up main")
	}
	if commits[0].Hash == "" || commits[0].Author == "" || commits[0].RelativeDate == "" {
		t.Fatalf("expected fully populated commit, got %+v", commits[0])
	}
}

func TestRecentChangesRespectsMaxCount(t *testing.T) {
	dir := initTestRepo(t)
	h, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	commits, err := h.RecentChanges("main.go", 1)
	if err != nil {
		t.Fatalf("RecentChanges: %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("len(commits) = %d, want 1", len(commits))
	}
}

func TestOpenRejectsNonRepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatal("expected Open to fail for a non-repository directory")
	}
}
