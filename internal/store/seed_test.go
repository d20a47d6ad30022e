package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/sudankdk/cee/internal/errors"
)

func TestDecodeTemplates(t *testing.T) {
	doc := `
templates:
  - title: Hello
    language: Python
    code: |
      print("Hello, " + input())
    stdin: World
  - title: Sum
    language: go
    code: package main
`
	tpls, err := DecodeTemplates(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tpls, 2)

	assert.Equal(t, "Hello", tpls[0].Title)
	assert.Equal(t, "python", tpls[0].Language)
	assert.Equal(t, "print(\"Hello, \" + input())\n", tpls[0].Code)
	assert.Equal(t, "World", tpls[0].Stdin)
	assert.Empty(t, tpls[1].Stdin)
}

func TestDecodeTemplatesRejectsUnknownLanguage(t *testing.T) {
	doc := "templates:\n  - title: x\n    language: cobol\n    code: y\n"
	_, err := DecodeTemplates(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InvalidParams))
	assert.True(t, apperr.Is(err, apperr.UnsupportedLanguage))
}

func TestDecodeTemplatesRequiresFields(t *testing.T) {
	_, err := DecodeTemplates(strings.NewReader("templates:\n  - language: go\n    code: y\n"))
	assert.EqualError(t, err, "template 1: title is required")

	_, err = DecodeTemplates(strings.NewReader("templates:\n  - title: t\n    language: go\n"))
	assert.EqualError(t, err, `template "t": code is required`)
}

func TestDecodeTemplatesEmpty(t *testing.T) {
	tpls, err := DecodeTemplates(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tpls)
}
