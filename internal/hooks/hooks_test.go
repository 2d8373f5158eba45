package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func writeForeign(t *testing.T, root, body string) {
	t.Helper()
	path := Path(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
}

func TestInstallWritesHook(t *testing.T) {
	root := initRepo(t)

	require.NoError(t, Install(root))
	assert.True(t, IsInstalled(root))

	data, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "#!/usr/bin/env bash")
	assert.Contains(t, body, `if [ "$ZWISCHEN_SKIP" = "1" ]; then`)
	assert.Contains(t, body, "zwischen scan --pre-push\nexit $?")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(Path(root))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100)
	}

	// Reinstalling over our own hook is fine.
	require.NoError(t, Install(root))
}

func TestInstallRefusesForeignHook(t *testing.T) {
	root := initRepo(t)
	writeForeign(t, root, "#!/bin/sh\nnpm test\n")

	assert.ErrorIs(t, Install(root), ErrForeignHook)
	data, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nnpm test\n", string(data))
	assert.False(t, IsInstalled(root))
}

func TestBackupMovesForeignHook(t *testing.T) {
	root := initRepo(t)
	writeForeign(t, root, "#!/bin/sh\nnpm test\n")

	backup, err := Backup(root)
	require.NoError(t, err)
	assert.Equal(t, Path(root)+BackupSuffix, backup)

	saved, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nnpm test\n", string(saved))
	assert.True(t, IsInstalled(root))

	// A second backup does not clobber the first.
	writeForeign(t, root, "#!/bin/sh\nmake lint\n")
	second, err := Backup(root)
	require.NoError(t, err)
	assert.NotEqual(t, backup, second)
	assert.True(t, strings.HasPrefix(second, backup+"."))
	first, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nnpm test\n", string(first))
}

func TestBackupWithoutForeignHookSavesNothing(t *testing.T) {
	root := initRepo(t)

	backup, err := Backup(root)
	require.NoError(t, err)
	assert.Empty(t, backup)
	assert.True(t, IsInstalled(root))

	// Our own hook is reinstalled, not backed up.
	backup, err = Backup(root)
	require.NoError(t, err)
	assert.Empty(t, backup)
	assert.NoFileExists(t, Path(root)+BackupSuffix)
	assert.True(t, IsInstalled(root))
}

func TestAppendKeepsExistingHook(t *testing.T) {
	root := initRepo(t)
	writeForeign(t, root, "#!/bin/sh\nnpm test\n")

	require.NoError(t, Append(root))
	data, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "#!/bin/sh\nnpm test\n"))
	assert.Contains(t, body, "zwischen scan --pre-push || exit $?")
	assert.True(t, IsInstalled(root))

	// Appending twice does not duplicate the block.
	require.NoError(t, Append(root))
	again, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	assert.Equal(t, body, string(again))

	// An appended hook belongs to the user and survives uninstall.
	removed, err := Uninstall(root)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.FileExists(t, Path(root))
}

func TestAppendWithoutHookInstalls(t *testing.T) {
	root := initRepo(t)
	require.NoError(t, Append(root))
	assert.True(t, IsInstalled(root))
}

func TestUninstall(t *testing.T) {
	root := initRepo(t)

	removed, err := Uninstall(root)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, Install(root))
	removed, err = Uninstall(root)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, Path(root))

	writeForeign(t, root, "#!/bin/sh\n")
	removed, err = Uninstall(root)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.FileExists(t, Path(root))
}

func TestFindRoot(t *testing.T) {
	root := initRepo(t)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got, err := FindRoot(sub)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	resolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, resolved)
}
