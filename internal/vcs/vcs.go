// Package vcs implements the out-of-scope "Recent changes" collaborator
// (§6): given (root, relativePath, maxCount) it yields a commit history the
// Insight Synthesizer consumes as a pure function, never reaching into the
// core's authoritative state.
package vcs

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/73ai/code-context/internal/model"
)

// History opens a repository rooted at root and answers recent-changes
// queries against it.
type History struct {
	repo *git.Repository
}

// Open opens the git repository at root. It returns an error if root is
// not inside a git working tree — callers treat that as "no history
// available" rather than a fatal condition.
func Open(root string) (*History, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("vcs: open %s: %w", root, err)
	}
	return &History{repo: repo}, nil
}

// RecentChanges returns up to maxCount commits that touched relativePath,
// most recent first. maxCount <= 0 means "no limit".
func (h *History) RecentChanges(relativePath string, maxCount int) ([]model.Commit, error) {
	head, err := h.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("vcs: resolve HEAD: %w", err)
	}

	cIter, err := h.repo.Log(&git.LogOptions{
		From:     head.Hash(),
		FileName: &relativePath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("vcs: log %s: %w", relativePath, err)
	}
	defer cIter.Close()

	var out []model.Commit
	err = cIter.ForEach(func(c *object.Commit) error {
		if maxCount > 0 && len(out) >= maxCount {
			return storer.ErrStop
		}
		out = append(out, model.Commit{
			Hash:         c.Hash.String(),
			Author:       c.Author.Name,
			Message:      firstLine(c.Message),
			RelativeDate: humanize.Time(c.Author.When),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vcs: walk history for %s: %w", relativePath, err)
	}
	return out, nil
}

func firstLine(message string) string {
	for i, r := range message {
		if r == '\n' {
			return message[:i]
		}
	}
	return message
}
