package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Resolver locates scanner executables.
type Resolver interface {
	// Resolve returns the full path of name and true, or false when the tool
	// is not installed.
	Resolve(name string) (string, bool)
}

// PathResolver checks BinDir (where 'zwischen doctor --install-tools' puts
// downloads) before falling back to PATH.
type PathResolver struct {
	BinDir string
}

// NewResolver returns a PathResolver rooted at binDir. An empty binDir
// searches PATH only.
func NewResolver(binDir string) PathResolver {
	return PathResolver{BinDir: binDir}
}

func (r PathResolver) Resolve(name string) (string, bool) {
	if r.BinDir != "" {
		candidate := filepath.Join(r.BinDir, executableName(name))
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return p, true
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		return name + ".exe"
	}
	return name
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

// ToolVersion runs "<path> --version" and returns the first line of output,
// or "" if the tool does not answer within a few seconds.
func ToolVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}

// isExitError checks if err is an *exec.ExitError and assigns it.
func isExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

// isExitCode checks if err is an ExitError with the given code.
func isExitCode(err error, code int) bool {
	if e, ok := err.(*exec.ExitError); ok {
		return e.ExitCode() == code
	}
	return false
}
