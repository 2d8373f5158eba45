// Package gitdiff works out which files a push touches and narrows scans and
// findings down to them.
package gitdiff

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangedFiles returns the paths (relative to the repository root) changed
// between the remote default branch and HEAD. When there is no usable remote
// branch it falls back to the last commit. Any failure yields nil; the
// reason is logged at debug level.
func ChangedFiles(root string) []string {
	files, err := changedFiles(root)
	if err != nil {
		slog.Debug("Could not determine changed files", "root", root, "error", err)
		return nil
	}
	return files
}

func changedFiles(root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	head, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}

	if base, err := remoteMergeBase(repo, head); err == nil {
		files, err := diffCommits(base, head)
		if err == nil && len(files) > 0 {
			return files, nil
		}
	} else {
		slog.Debug("No remote base branch; diffing last commit", "error", err)
	}

	if head.NumParents() == 0 {
		return allFiles(head)
	}
	parent, err := head.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("loading HEAD^: %w", err)
	}
	return diffCommits(parent, head)
}

// remoteMergeBase finds the merge base of HEAD and origin's default branch.
func remoteMergeBase(repo *git.Repository, head *object.Commit) (*object.Commit, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewRemoteHEADReferenceName("origin"),
		plumbing.NewRemoteReferenceName("origin", "main"),
		plumbing.NewRemoteReferenceName("origin", "master"),
	}
	for _, name := range candidates {
		ref, err := repo.Reference(name, true)
		if err != nil {
			continue
		}
		remote, err := repo.CommitObject(ref.Hash())
		if err != nil {
			continue
		}
		bases, err := head.MergeBase(remote)
		if err != nil || len(bases) == 0 {
			continue
		}
		return bases[0], nil
	}
	return nil, errors.New("no origin default branch")
}

func diffCommits(from, to *object.Commit) ([]string, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree %s: %w", from.Hash, err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree %s: %w", to.Hash, err)
	}
	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			name = c.From.Name
		}
		seen[name] = true
	}
	return sortedKeys(seen), nil
}

// allFiles lists every file of a root commit.
func allFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree %s: %w", c.Hash, err)
	}
	seen := map[string]bool{}
	err = tree.Files().ForEach(func(f *object.File) error {
		seen[f.Name] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return sortedKeys(seen), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RepoRoot returns the top-level working directory of the repository that
// contains dir.
func RepoRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("repository has no worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}
