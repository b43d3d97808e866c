// Package sandbox executes untrusted generated code in throwaway directories
// with hard timeouts and classifies test results from heterogeneous output.
package sandbox

import (
	"regexp"
	"sync"
)

// Runtime describes how to compile, run, and remediate one language. Command
// values are argv slices executed inside the per-run work directory.
type Runtime struct {
	// Extension is the source-file extension without a dot.
	Extension string
	// SourceName overrides the default "main.<ext>" file name. Java needs
	// the file named after its public class.
	SourceName string
	// Compile, when non-nil, returns the compiler argv for src producing
	// out. A non-zero compile exit aborts the execution.
	Compile func(src, out string) []string
	// Run returns the argv that executes the program.
	Run func(src, out string) []string
	// MissingDependency extracts a missing package name from combined
	// output, or "" when the failure is not a dependency error.
	MissingDependency func(output string) string
	// Install returns the package-manager argv that installs pkg.
	Install func(pkg string) []string
}

var (
	runtimeMu sync.RWMutex
	runtimes  = map[string]Runtime{}
)

// RegisterRuntime adds or replaces the runtime for a canonical language name.
func RegisterRuntime(language string, rt Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimes[language] = rt
}

// LookupRuntime returns the runtime registered for a canonical language name.
func LookupRuntime(language string) (Runtime, bool) {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	rt, ok := runtimes[language]
	return rt, ok
}

var (
	pythonMissingRe = regexp.MustCompile(`ModuleNotFoundError: No module named '([^']+)'`)
	nodeMissingRe   = regexp.MustCompile(`Cannot find module '([^']+)'`)
	javaMissingRe   = regexp.MustCompile(`NoClassDefFoundError: ([\w/.]+)`)
)

func firstGroup(re *regexp.Regexp) func(string) string {
	return func(output string) string {
		if m := re.FindStringSubmatch(output); m != nil {
			return m[1]
		}
		return ""
	}
}

func init() {
	RegisterRuntime("python", Runtime{
		Extension:         "py",
		Run:               func(src, out string) []string { return []string{"python3", src} },
		MissingDependency: firstGroup(pythonMissingRe),
		Install:           func(pkg string) []string { return []string{"pip3", "install", pkg} },
	})
	RegisterRuntime("javascript", Runtime{
		Extension:         "js",
		Run:               func(src, out string) []string { return []string{"node", src} },
		MissingDependency: firstGroup(nodeMissingRe),
		Install:           func(pkg string) []string { return []string{"npm", "install", pkg} },
	})
	RegisterRuntime("typescript", Runtime{
		Extension:         "ts",
		Run:               func(src, out string) []string { return []string{"npx", "ts-node", src} },
		MissingDependency: firstGroup(nodeMissingRe),
		Install:           func(pkg string) []string { return []string{"npm", "install", pkg} },
	})
	RegisterRuntime("ruby", Runtime{
		Extension: "rb",
		Run:       func(src, out string) []string { return []string{"ruby", src} },
	})
	RegisterRuntime("php", Runtime{
		Extension: "php",
		Run:       func(src, out string) []string { return []string{"php", src} },
	})
	RegisterRuntime("go", Runtime{
		Extension: "go",
		Run:       func(src, out string) []string { return []string{"go", "run", src} },
	})
	RegisterRuntime("c", Runtime{
		Extension: "c",
		Compile:   func(src, out string) []string { return []string{"gcc", src, "-o", out} },
		Run:       func(src, out string) []string { return []string{out} },
	})
	RegisterRuntime("cpp", Runtime{
		Extension: "cpp",
		Compile:   func(src, out string) []string { return []string{"g++", src, "-o", out} },
		Run:       func(src, out string) []string { return []string{out} },
	})
	RegisterRuntime("java", Runtime{
		Extension:         "java",
		SourceName:        "Main.java",
		Compile:           func(src, out string) []string { return []string{"javac", src} },
		Run:               func(src, out string) []string { return []string{"java", "Main"} },
		MissingDependency: firstGroup(javaMissingRe),
	})
}
