package project

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// KeyPath names file for element key generation. It is relative to the
// project root, or to the enclosing git worktree when there is no project,
// so keys do not depend on where the checkout lives.
func KeyPath(file string, m *Manifest) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	if m != nil && m.Root != "" {
		if rel, ok := within(m.Root, abs); ok {
			return rel
		}
	}
	if root, ok := WorktreeRoot(filepath.Dir(abs)); ok {
		if rel, ok := within(root, abs); ok {
			return rel
		}
	}
	return filepath.Base(abs)
}

// WorktreeRoot finds the git worktree containing dir.
func WorktreeRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		// git.ErrRepositoryNotExists and unreadable repositories alike
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repository
		return "", false
	}
	return wt.Filesystem.Root(), true
}

func within(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
