// Package git reads committed versions of data files through the git CLI.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotGitRepo indicates the directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrCommitNotFound indicates the specified commit does not exist.
var ErrCommitNotFound = errors.New("commit not found")

// ErrFileNotTracked indicates a data file is not tracked by git.
var ErrFileNotTracked = errors.New("file not tracked by git")

// FindRepoRoot finds the root of the git repository containing the given path.
// Returns ErrNotGitRepo if not in a git repository.
func FindRepoRoot(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", ErrNotGitRepo
	}
	return strings.TrimSpace(string(output)), nil
}

// IsGitRepo checks if the given path is inside a git repository.
func IsGitRepo(path string) bool {
	_, err := FindRepoRoot(path)
	return err == nil
}

// ValidateCommit verifies that a commit reference exists.
// Supports SHA, HEAD, HEAD~N, branch names, tags, etc.
// Returns the resolved full SHA or ErrCommitNotFound.
func ValidateCommit(repoRoot, commitRef string) (string, error) {
	cmd := exec.Command("git", "-C", repoRoot, "rev-parse", "--verify", commitRef+"^{commit}")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, commitRef)
	}
	return strings.TrimSpace(string(output)), nil
}

// RelPath returns path relative to the git repository root, in the slash
// form git expects.
func RelPath(repoRoot, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// git reports the root with symlinks resolved
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the git repository %s", path, repoRoot)
	}
	return filepath.ToSlash(rel), nil
}

// FileAtCommit returns the contents of relPath at a commit. A file that did
// not exist at that commit reads as empty.
func FileAtCommit(repoRoot, relPath, commitRef string) ([]byte, error) {
	sha, err := ValidateCommit(repoRoot, commitRef)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("git", "-C", repoRoot, "show", sha+":"+relPath)
	output, err := cmd.Output()
	if err != nil {
		// File might not exist at that commit
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s at %s: %w", relPath, commitRef, err)
	}
	return output, nil
}

// IsFileTracked checks if relPath is tracked by git.
func IsFileTracked(repoRoot, relPath string) bool {
	cmd := exec.Command("git", "-C", repoRoot, "ls-files", "--", relPath)
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) != ""
}
