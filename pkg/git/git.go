// Package git wraps the git command line for the clone and submodule
// operations forkdep needs. Shelling out keeps behavior identical to what
// the user would get running git by hand, including credential helpers and
// ssh agent support.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsInstalled returns true if git is available on the system PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo returns true if the directory is the root of a git repository.
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Clone clones a repository to dest.
func Clone(ctx context.Context, url, dest string) error {
	if err := run(ctx, ".", "clone", url, dest); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// SubmoduleAdd registers url as a submodule of the repository at repoDir,
// checked out at path (relative to repoDir), and clones it.
func SubmoduleAdd(ctx context.Context, repoDir, url, path string) error {
	if err := run(ctx, repoDir, "submodule", "add", url, path); err != nil {
		return fmt.Errorf("adding submodule %s: %w", url, err)
	}
	if err := run(ctx, repoDir, "submodule", "update", "--init", "--", path); err != nil {
		return fmt.Errorf("initializing submodule %s: %w", path, err)
	}
	return nil
}

// DefaultBranch detects the default branch of a remote repository using
// git ls-remote --symref. Returns an error if the branch cannot be detected.
func DefaultBranch(ctx context.Context, url string) (string, error) {
	out, err := output(ctx, ".", "ls-remote", "--symref", url, "HEAD")
	if err != nil {
		return "", fmt.Errorf("ls-remote %s: %w", url, err)
	}
	// Expected output line: "ref: refs/heads/main\tHEAD"
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[0] == "ref:" && strings.HasPrefix(parts[1], "refs/heads/") {
			return strings.TrimPrefix(parts[1], "refs/heads/"), nil
		}
	}
	return "", fmt.Errorf("default branch not found for %s", url)
}

// run executes a git command in the given directory.
// Stderr is captured and included in the error message on failure.
func run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// output executes a git command and returns its stdout.
func output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
