package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/model"
)

// MaxSourceSize bounds files read from disk for a single submission.
const MaxSourceSize = 1 << 20

// ReadSubmission loads a source file, and optionally a stdin file, into a
// Code. lang overrides detection from the file extension. A stdinPath of "-"
// reads standard input.
func ReadSubmission(codePath, lang, stdinPath string) (*model.Code, error) {
	code, err := readLimited(codePath)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	var l languages.Language
	if lang != "" {
		l, err = languages.Parse(lang)
	} else {
		l, err = languages.FromFilename(codePath)
	}
	if err != nil {
		return nil, err
	}

	var stdin string
	if stdinPath != "" {
		stdin, err = readLimited(stdinPath)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	}

	return &model.Code{Language: l.String(), SourceCode: code, Stdin: stdin}, nil
}

func readLimited(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxSourceSize {
		return "", fmt.Errorf("%s is larger than %d bytes", path, MaxSourceSize)
	}
	return string(data), nil
}
