package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
}

func TestDetectEmpty(t *testing.T) {
	info := Detect(t.TempDir())
	assert.Empty(t, info.Types)
	assert.Empty(t, info.PrimaryType)
	assert.Equal(t, "unknown", info.Language)
	assert.Equal(t, "project", info.Label())
}

func TestDetectGo(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "go.mod", "module x\n")

	info := Detect(root)
	assert.Equal(t, []string{"go"}, info.Types)
	assert.Equal(t, "go", info.PrimaryType)
	assert.Equal(t, "go", info.Label())
}

func TestDetectNextJSWinsOverReact(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "package.json", `{"dependencies":{"react":"18","next":"14"},"devDependencies":{"express":"4"}}`)

	info := Detect(root)
	assert.Equal(t, []string{"node"}, info.Types)
	assert.Equal(t, []string{"nextjs", "react", "express"}, info.Frameworks)
	assert.Equal(t, "nextjs", info.PrimaryType)
	assert.Equal(t, "javascript", info.Language)
	assert.Equal(t, "nextjs (javascript)", info.Label())
}

func TestDetectPythonAndRuby(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "requirements.txt", "Flask==3.0\nrequests\n")
	touch(t, root, "Gemfile", "source 'https://rubygems.org'\ngem 'sinatra'\n")

	info := Detect(root)
	assert.Equal(t, []string{"python", "ruby"}, info.Types)
	assert.Equal(t, []string{"flask", "sinatra"}, info.Frameworks)
	assert.Equal(t, "flask (python)", info.Label())
}

func TestDetectDotnetGlob(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "App.csproj", "<Project/>")
	assert.Equal(t, []string{"dotnet"}, Detect(root).Types)
}

func TestDetectIgnoresBrokenPackageJSON(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "package.json", "{not json")
	info := Detect(root)
	assert.Equal(t, "node", info.PrimaryType)
	assert.Empty(t, info.Frameworks)
}
