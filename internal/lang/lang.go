// Package lang normalizes programming-language names and maps them to file
// extensions and toolchain commands.
package lang

import "strings"

var aliases = map[string]string{
	"javascript": "javascript",
	"js":         "javascript",
	"node":       "javascript",
	"nodejs":     "javascript",
	"node.js":    "javascript",
	"typescript": "typescript",
	"ts":         "typescript",
	"python":     "python",
	"py":         "python",
	"python3":    "python",
	"java":       "java",
	"c#":         "csharp",
	"csharp":     "csharp",
	"c-sharp":    "csharp",
	"c++":        "cpp",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"golang":     "go",
	"ruby":       "ruby",
	"rb":         "ruby",
	"php":        "php",
	"rust":       "rust",
	"rs":         "rust",
	"swift":      "swift",
	"kotlin":     "kotlin",
	"kt":         "kotlin",
}

var extensions = map[string]string{
	"python":     "py",
	"javascript": "js",
	"typescript": "ts",
	"java":       "java",
	"csharp":     "cs",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"ruby":       "rb",
	"php":        "php",
	"swift":      "swift",
	"kotlin":     "kt",
	"rust":       "rs",
	"scala":      "scala",
}

// Clean maps common language-name variants onto one canonical name. Unknown
// names pass through lowercased so callers can still key on them.
func Clean(language string) string {
	name := strings.ToLower(strings.TrimSpace(language))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Extension returns the source-file extension for a language, or "txt" when
// the language is unknown.
func Extension(language string) string {
	if ext, ok := extensions[Clean(language)]; ok {
		return ext
	}
	return "txt"
}
