package scanner

import (
	"context"

	"github.com/CosmoTheDev/zwischen/models"
)

// Request describes what one scan run covers.
type Request struct {
	// Root is the project directory. Scanner processes run with it as their
	// working directory.
	Root string
	// Files restricts the scan to these paths (relative to Root). Empty means
	// the whole tree.
	Files []string
}

// Scanner is the interface every scanning tool adapter implements.
// To add a new scanner:
//  1. Create a new file in internal/scanner/ (e.g. mynewtool.go)
//  2. Implement the Scanner interface
//  3. Register it in BuildScanners()
//
// Scan never fails: a missing tool yields no findings, and a crashed or noisy
// tool yields whatever could be parsed. Details go to the debug log.
type Scanner interface {
	// Name returns the tool name recorded on each finding (e.g. "gitleaks").
	Name() string

	// Kind returns the category of findings this scanner emits.
	Kind() models.FindingKind

	// Available reports whether the tool binary can be resolved.
	Available(ctx context.Context) bool

	// Scan runs the tool and returns normalised findings in tool order.
	Scan(ctx context.Context, req Request) []models.Finding
}
