// Package hooks installs and removes the zwischen git pre-push hook.
package hooks

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CosmoTheDev/zwischen/internal/gitdiff"
)

// Marker identifies hooks written by zwischen.
const Marker = "Zwischen pre-push hook"

// BackupSuffix is appended to a foreign hook's path by Backup.
const BackupSuffix = ".zwischen.backup"

// ErrForeignHook is returned by Install when a pre-push hook that zwischen
// did not write is already present.
var ErrForeignHook = errors.New("a pre-push hook not managed by zwischen already exists")

const hookScript = `#!/usr/bin/env bash
# ` + Marker + ` - installed by 'zwischen init'

if [ "$ZWISCHEN_SKIP" = "1" ]; then
  exit 0
fi

zwischen scan --pre-push
exit $?
`

const appendScript = `
# ` + Marker + ` - appended by 'zwischen init'
if [ "$ZWISCHEN_SKIP" = "1" ]; then
  exit 0
fi

zwischen scan --pre-push || exit $?
`

// Path returns the pre-push hook path for the repository at root.
func Path(root string) string {
	return filepath.Join(root, ".git", "hooks", "pre-push")
}

// FindRoot returns the top-level directory of the repository containing dir.
func FindRoot(dir string) (string, error) {
	return gitdiff.RepoRoot(dir)
}

// IsOurs reports whether the hook at path carries the zwischen marker.
func IsOurs(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), Marker)
}

// IsInstalled reports whether root has a zwischen pre-push hook.
func IsInstalled(root string) bool {
	return IsOurs(Path(root))
}

// Exists reports whether any pre-push hook is present.
func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

// Install writes the pre-push hook. An existing zwischen hook is rewritten;
// any other hook is left alone and ErrForeignHook is returned.
func Install(root string) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	if Exists(root) && !IsOurs(path) {
		return ErrForeignHook
	}
	return writeHook(path, hookScript)
}

// Backup copies a foreign hook to <hook>.zwischen.backup (timestamped when
// that already exists) and then installs ours in its place. It returns the
// backup path, or "" when there was no foreign hook to save.
func Backup(root string) (string, error) {
	path := Path(root)
	var backup string
	if Exists(root) && !IsOurs(path) {
		backup = path + BackupSuffix
		if _, err := os.Stat(backup); err == nil {
			backup += "." + time.Now().Format("20060102150405")
		}
		if err := copyFile(path, backup); err != nil {
			return "", fmt.Errorf("backing up existing hook: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("removing existing hook: %w", err)
		}
	}
	if err := Install(root); err != nil {
		return "", err
	}
	return backup, nil
}

// Append adds the zwischen check to the end of an existing hook. Hooks that
// already carry the marker are left unchanged.
func Append(root string) error {
	path := Path(root)
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Install(root)
	}
	if err != nil {
		return fmt.Errorf("reading existing hook: %w", err)
	}
	if strings.Contains(string(existing), Marker) {
		return nil
	}
	content := strings.TrimRight(string(existing), "\n") + "\n" + appendScript
	return writeHook(path, content)
}

// Uninstall removes the pre-push hook if zwischen wrote it. It reports
// whether a hook was removed. A hook that zwischen only appended to is kept.
func Uninstall(root string) (bool, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading hook: %w", err)
	}
	if !strings.Contains(string(data), Marker+" - installed by") {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("removing hook: %w", err)
	}
	return true, nil
}

func writeHook(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing hook: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("making hook executable: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
