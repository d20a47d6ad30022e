package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/sudankdk/cee/internal/errors"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSubmissionDetectsLanguage(t *testing.T) {
	src := write(t, "hello.rs", "fn main() {}")
	in := write(t, "in.txt", "42")

	code, err := ReadSubmission(src, "", in)
	require.NoError(t, err)
	assert.Equal(t, "rust", code.Language)
	assert.Equal(t, "fn main() {}", code.SourceCode)
	assert.Equal(t, "42", code.Stdin)
}

func TestReadSubmissionLanguageOverride(t *testing.T) {
	src := write(t, "script", "puts 1")

	code, err := ReadSubmission(src, "Ruby", "")
	require.NoError(t, err)
	assert.Equal(t, "ruby", code.Language)
	assert.Empty(t, code.Stdin)
}

func TestReadSubmissionUnknownExtension(t *testing.T) {
	src := write(t, "main.kt", "fun main() {}")

	_, err := ReadSubmission(src, "", "")
	assert.True(t, apperr.Is(err, apperr.UnsupportedLanguage))
}

func TestReadSubmissionTooLarge(t *testing.T) {
	src := write(t, "big.py", strings.Repeat("#", MaxSourceSize+1))

	_, err := ReadSubmission(src, "", "")
	assert.ErrorContains(t, err, "larger than")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "print(1)", Preview("print(1)\n", 20))
	assert.Equal(t, "import sys ...", Preview("import sys\nprint(sys.argv)", 20))
	assert.Equal(t, "abcde...", Preview("abcdefgh", 5))
	assert.Equal(t, "", Preview("   ", 5))
	assert.Equal(t, "héll...", Preview("héllo wörld", 5))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
	// "é" is two bytes; cutting inside it drops the whole rune
	assert.Equal(t, "h", Truncate("héllo", 2))
	assert.Equal(t, "hé", Truncate("héllo", 3))
	assert.Equal(t, "日", Truncate("日本語", 5))
}
