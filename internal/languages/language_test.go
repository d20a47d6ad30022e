package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/sudankdk/cee/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"python", Python},
		{"Python", Python},
		{" CPP ", Cpp},
		{"typescript", TypeScript},
		{"go", Go},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseUnsupported(t *testing.T) {
	for _, in := range []string{"cobol", "", "c#"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, apperr.Is(err, apperr.UnsupportedLanguage))
	}
}

func TestFromFilename(t *testing.T) {
	l, err := FromFilename("/tmp/Main.java")
	require.NoError(t, err)
	assert.Equal(t, Java, l)

	l, err = FromFilename("solution.CC")
	require.NoError(t, err)
	assert.Equal(t, Cpp, l)

	_, err = FromFilename("notes.txt")
	assert.True(t, apperr.Is(err, apperr.UnsupportedLanguage))
}
