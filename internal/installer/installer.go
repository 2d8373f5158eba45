// Package installer downloads the gitleaks release binary into the zwischen
// tool directory.
package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	gitleaksOwner = "gitleaks"
	gitleaksRepo  = "gitleaks"

	// maxBinarySize bounds the extracted binary.
	maxBinarySize = 200 << 20
)

// ErrUnsupportedPlatform is returned when gitleaks publishes no build for
// the current OS/architecture.
var ErrUnsupportedPlatform = errors.New("no gitleaks release for this platform")

// Installer fetches gitleaks releases from GitHub.
type Installer struct {
	client *gogithub.Client
	binDir string
	goos   string
	goarch string
}

// Options configures New. Empty fields fall back to the runtime platform,
// GITHUB_TOKEN and api.github.com.
type Options struct {
	BinDir  string
	Token   string
	BaseURL string
	GOOS    string
	GOARCH  string
}

// New creates an Installer. A token (from Options or GITHUB_TOKEN) lifts the
// anonymous API rate limit.
func New(opts Options) (*Installer, error) {
	token := opts.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
	}
	client := gogithub.NewClient(httpClient)

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}

	in := &Installer{
		client: client,
		binDir: opts.BinDir,
		goos:   opts.GOOS,
		goarch: opts.GOARCH,
	}
	if in.goos == "" {
		in.goos = runtime.GOOS
	}
	if in.goarch == "" {
		in.goarch = runtime.GOARCH
	}
	return in, nil
}

// BinaryName is the gitleaks executable name for goos.
func BinaryName(goos string) string {
	if goos == "windows" {
		return "gitleaks.exe"
	}
	return "gitleaks"
}

// InstallGitleaks downloads the latest gitleaks release and extracts its
// binary into the bin directory. It returns the installed path.
func (in *Installer) InstallGitleaks(ctx context.Context) (string, error) {
	release, _, err := in.client.Repositories.GetLatestRelease(ctx, gitleaksOwner, gitleaksRepo)
	if err != nil {
		return "", fmt.Errorf("fetching latest gitleaks release: %w", err)
	}

	asset, err := SelectAsset(in.goos, in.goarch, release.GetTagName(), release.Assets)
	if err != nil {
		return "", fmt.Errorf("selecting gitleaks asset for %s/%s: %w", in.goos, in.goarch, err)
	}
	slog.Debug("Downloading gitleaks", "release", release.GetTagName(), "asset", asset.GetName())

	rc, redirect, err := in.client.Repositories.DownloadReleaseAsset(ctx, gitleaksOwner, gitleaksRepo, asset.GetID(), http.DefaultClient)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", asset.GetName(), err)
	}
	if rc == nil {
		return "", fmt.Errorf("downloading %s: unexpected redirect to %s", asset.GetName(), redirect)
	}
	defer rc.Close()

	archive, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", asset.GetName(), err)
	}

	if err := os.MkdirAll(in.binDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", in.binDir, err)
	}
	name := BinaryName(in.goos)
	dest := filepath.Join(in.binDir, name)
	if strings.HasSuffix(asset.GetName(), ".zip") {
		err = extractZip(archive, name, dest)
	} else {
		err = extractTarGz(archive, name, dest)
	}
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", asset.GetName(), err)
	}
	return dest, nil
}

// SelectAsset picks the release archive for goos/goarch, named like
// gitleaks_8.18.0_linux_x64.tar.gz.
func SelectAsset(goos, goarch, tag string, assets []*gogithub.ReleaseAsset) (*gogithub.ReleaseAsset, error) {
	var osName, ext string
	switch goos {
	case "linux", "darwin":
		osName, ext = goos, ".tar.gz"
	case "windows":
		osName, ext = "windows", ".zip"
	default:
		return nil, ErrUnsupportedPlatform
	}

	var arch string
	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	default:
		return nil, ErrUnsupportedPlatform
	}

	version := strings.TrimPrefix(tag, "v")
	want := fmt.Sprintf("gitleaks_%s_%s_%s%s", version, osName, arch, ext)
	suffix := fmt.Sprintf("_%s_%s%s", osName, arch, ext)
	for _, a := range assets {
		if a.GetName() == want {
			return a, nil
		}
	}
	// Tags and asset versions occasionally disagree.
	for _, a := range assets {
		if strings.HasPrefix(a.GetName(), "gitleaks_") && strings.HasSuffix(a.GetName(), suffix) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: no asset named %s", ErrUnsupportedPlatform, want)
}

func extractTarGz(archive []byte, name, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s not found in archive", name)
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != name {
			continue
		}
		return writeBinary(tr, dest)
	}
}

func extractZip(archive []byte, name, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		return writeBinary(rc, dest)
	}
	return fmt.Errorf("%s not found in archive", name)
}

// writeBinary writes to a temporary file first so a failed download never
// leaves a truncated executable behind.
func writeBinary(r io.Reader, dest string) error {
	tmp := dest + ".download"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(r, maxBinarySize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxBinarySize {
		err = fmt.Errorf("binary exceeds %d bytes", maxBinarySize)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
