package languages

import (
	"path/filepath"
	"strings"

	apperr "github.com/sudankdk/cee/internal/errors"
)

// Language identifies one of the supported toolchains.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	C          Language = "c"
	Cpp        Language = "cpp"
	Go         Language = "go"
	Swift      Language = "swift"
	Rust       Language = "rust"
	Ruby       Language = "ruby"
)

// All lists the supported languages in display order.
var All = []Language{C, Cpp, JavaScript, TypeScript, Java, Python, Go, Swift, Rust, Ruby}

func (l Language) String() string { return string(l) }

// Parse maps a user supplied language tag to a Language, ignoring case.
func Parse(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range All {
		if l == lang {
			return l, nil
		}
	}
	return "", apperr.UnsupportedLanguageError(s)
}

var extensions = map[string]Language{
	".py":    Python,
	".js":    JavaScript,
	".mjs":   JavaScript,
	".ts":    TypeScript,
	".java":  Java,
	".c":     C,
	".cpp":   Cpp,
	".cc":    Cpp,
	".cxx":   Cpp,
	".go":    Go,
	".swift": Swift,
	".rs":    Rust,
	".rb":    Ruby,
}

// FromFilename guesses the language of a source file from its extension.
func FromFilename(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := extensions[ext]; ok {
		return l, nil
	}
	return "", apperr.UnsupportedLanguageError(ext)
}
