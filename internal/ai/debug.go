package ai

import (
	"os"
	"strings"
)

// parseAIDebugEnv reads ZWISCHEN_AI_DEBUG and returns (debugEnabled, promptsEnabled).
// Valid values:
//
//	"all" or "1" or "true" - enable both debug and prompts
//	"prompts" - enable only prompts
//	"none" or "0" or "false" or "" - disable all
//
// Output goes through slog at debug level, so --verbose is needed as well.
func parseAIDebugEnv() (debug bool, prompts bool) {
	switch strings.TrimSpace(strings.ToLower(os.Getenv("ZWISCHEN_AI_DEBUG"))) {
	case "all", "1", "true":
		return true, true
	case "prompts":
		return false, true
	default:
		return false, false
	}
}

// isDebug checks if request/response debugging is enabled.
func isDebug() bool {
	debug, _ := parseAIDebugEnv()
	return debug
}

// isDebugPrompts checks if prompts and raw replies should be logged.
func isDebugPrompts() bool {
	_, prompts := parseAIDebugEnv()
	return prompts
}
