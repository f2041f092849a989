package index

import (
	"path/filepath"
	"strings"
)

// extensionLanguages maps lowercase file extensions to language identifiers.
var extensionLanguages = map[string]string{
	".py":    "python",
	".pyw":   "python",
	".pyi":   "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".mts":   "typescript",
	".cts":   "typescript",
	".go":    "go",
	".rs":    "rust",
	".rb":    "ruby",
	".rake":  "ruby",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".hh":    "cpp",
	".php":   "php",
	".phtml": "php",
	".cs":    "csharp",
	".swift": "swift",
	".kt":    "kotlin",
	".kts":   "kotlin",
	".scala": "scala",
	".dart":  "dart",
	".lua":   "lua",
	".pl":    "perl",
	".pm":    "perl",
	".r":     "r",
	".ex":    "elixir",
	".exs":   "elixir",
	".erl":   "erlang",
	".hrl":   "erlang",
	".hs":    "haskell",
	".ml":    "ocaml",
	".mli":   "ocaml",
	".clj":   "clojure",
	".cljs":  "clojure",
	".groovy": "groovy",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".ps1":   "powershell",
	".sql":   "sql",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".scss":  "scss",
	".less":  "less",
	".vue":   "vue",
	".svelte": "svelte",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".proto": "protobuf",
	".tf":    "terraform",
	".zig":   "zig",
	".nim":   "nim",
	".jl":    "julia",
	".m":     "objc",
	".mm":    "objc",
	".f90":   "fortran",
	".f95":   "fortran",
	".vim":   "vim",
	".dockerfile": "dockerfile",
}

// specialFilenames maps well-known extension-less filenames (lowercased)
// to language identifiers.
var specialFilenames = map[string]string{
	"dockerfile":     "dockerfile",
	"makefile":       "makefile",
	"rakefile":       "ruby",
	"gemfile":        "ruby",
	"vagrantfile":    "ruby",
	"cmakelists.txt": "cmake",
}

// DetectLanguage maps a file path to a language identifier.
// It matches the extension case-insensitively, falling back to a table of
// well-known extension-less filenames. Returns "" for unrecognized files;
// callers skip those silently.
func DetectLanguage(filePath string) string {
	base := strings.ToLower(filepath.Base(filePath))
	ext := filepath.Ext(base)

	if ext != "" {
		if lang, ok := extensionLanguages[ext]; ok {
			return lang
		}
	}
	if lang, ok := specialFilenames[base]; ok {
		return lang
	}
	return ""
}

// KnownExtensions returns every extension the detector recognizes.
// Used by the manager to build its default scan allow-list.
func KnownExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}
