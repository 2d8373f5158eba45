// Package project sniffs the type of the project being scanned. The result
// is only used for banner text and the AI prompt header.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Info describes a detected project.
type Info struct {
	Root       string   `json:"root"`
	Types      []string `json:"types"`
	Frameworks []string `json:"frameworks"`
	// PrimaryType is the most specific framework, else the first base type.
	PrimaryType string `json:"primary_type"`
	Language    string `json:"language"`
}

type marker struct {
	kind     string
	patterns []string
}

// markers are checked in order; the order decides the primary type.
var markers = []marker{
	{"node", []string{"package.json"}},
	{"python", []string{"requirements.txt", "pyproject.toml", "setup.py", "Pipfile", "poetry.lock"}},
	{"ruby", []string{"Gemfile", "Rakefile"}},
	{"go", []string{"go.mod", "go.sum"}},
	{"java", []string{"pom.xml", "build.gradle", "build.gradle.kts"}},
	{"rust", []string{"Cargo.toml", "Cargo.lock"}},
	{"php", []string{"composer.json"}},
	{"dotnet", []string{"*.csproj", "*.sln", "*.fsproj"}},
}

type framework struct {
	name     string
	language string
	packages []string
}

// Framework tables are listed most specific first.
var (
	jsFrameworks = []framework{
		{"nextjs", "javascript", []string{"next"}},
		{"nuxt", "javascript", []string{"nuxt"}},
		{"remix", "javascript", []string{"@remix-run/react"}},
		{"gatsby", "javascript", []string{"gatsby"}},
		{"astro", "javascript", []string{"astro"}},
		{"angular", "typescript", []string{"@angular/core"}},
		{"nestjs", "typescript", []string{"@nestjs/core"}},
		{"svelte", "javascript", []string{"svelte"}},
		{"vue", "javascript", []string{"vue"}},
		{"react", "javascript", []string{"react"}},
		{"express", "javascript", []string{"express"}},
	}
	pythonFrameworks = []framework{
		{"django", "python", []string{"django"}},
		{"fastapi", "python", []string{"fastapi"}},
		{"flask", "python", []string{"flask"}},
		{"pyramid", "python", []string{"pyramid"}},
		{"tornado", "python", []string{"tornado"}},
		{"starlette", "python", []string{"starlette"}},
		{"streamlit", "python", []string{"streamlit"}},
		{"jupyter", "python", []string{"jupyter", "jupyterlab", "notebook"}},
	}
	rubyFrameworks = []framework{
		{"rails", "ruby", []string{"rails"}},
		{"hanami", "ruby", []string{"hanami"}},
		{"sinatra", "ruby", []string{"sinatra"}},
		{"grape", "ruby", []string{"grape"}},
		{"roda", "ruby", []string{"roda"}},
	}
)

// Detect inspects root. It never fails; unreadable files are ignored.
func Detect(root string) Info {
	info := Info{Root: root}

	for _, m := range markers {
		for _, pattern := range m.patterns {
			if matches(root, pattern) {
				info.Types = append(info.Types, m.kind)
				break
			}
		}
	}

	var languages []string
	add := func(found []framework) {
		for _, f := range found {
			if !contains(info.Frameworks, f.name) {
				info.Frameworks = append(info.Frameworks, f.name)
				languages = append(languages, f.language)
			}
		}
	}
	add(detectJS(root))
	add(detectPython(root))
	add(detectRuby(root))

	switch {
	case len(info.Frameworks) > 0:
		info.PrimaryType = info.Frameworks[0]
		info.Language = languages[0]
	case len(info.Types) > 0:
		info.PrimaryType = info.Types[0]
		info.Language = info.Types[0]
	default:
		info.Language = "unknown"
	}
	return info
}

// Label is the banner text: "nextjs (javascript)", "go" or "project".
func (i Info) Label() string {
	switch {
	case i.PrimaryType == "":
		return "project"
	case i.Language != "" && i.Language != "unknown" && i.Language != i.PrimaryType:
		return i.PrimaryType + " (" + i.Language + ")"
	default:
		return i.PrimaryType
	}
}

func matches(root, pattern string) bool {
	if strings.Contains(pattern, "*") {
		found, err := filepath.Glob(filepath.Join(root, pattern))
		return err == nil && len(found) > 0
	}
	_, err := os.Stat(filepath.Join(root, pattern))
	return err == nil
}

func detectJS(root string) []framework {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Dependencies    map[string]any `json:"dependencies"`
		DevDependencies map[string]any `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}

	var out []framework
	for _, f := range jsFrameworks {
		for _, p := range f.packages {
			_, dep := pkg.Dependencies[p]
			_, dev := pkg.DevDependencies[p]
			if dep || dev {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func detectPython(root string) []framework {
	var content strings.Builder
	for _, name := range []string{"requirements.txt", "pyproject.toml", "Pipfile"} {
		if data, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			content.WriteString(strings.ToLower(string(data)))
			content.WriteString("\n")
		}
	}
	if content.Len() == 0 {
		return nil
	}
	text := content.String()

	var out []framework
	for _, f := range pythonFrameworks {
		for _, p := range f.packages {
			if strings.Contains(text, p) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func detectRuby(root string) []framework {
	data, err := os.ReadFile(filepath.Join(root, "Gemfile"))
	if err != nil {
		return nil
	}
	text := strings.ToLower(string(data))

	var out []framework
	for _, f := range rubyFrameworks {
		for _, g := range f.packages {
			if strings.Contains(text, "gem '"+g+"'") || strings.Contains(text, `gem "`+g+`"`) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
