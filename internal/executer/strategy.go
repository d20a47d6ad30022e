package executer

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/sudankdk/cee/internal/javasrc"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/sandbox"
)

// ImageResolver fills the image of a request. *languages.Registry satisfies it.
type ImageResolver interface {
	Resolve(ctx context.Context, lang languages.Language) (languages.ImageConfig, error)
}

// Strategy turns a submission into a container run for one language. On
// success exactly one of the request and the early result is non-nil: the
// early result reports source problems that make running pointless.
type Strategy interface {
	Language() languages.Language
	BuildRequest(ctx context.Context, code, stdin string) (*sandbox.ExecutionRequest, *model.ExecutionResult, error)
}

// Config describes how a language is run once its image is known.
type Config struct {
	Memory   int64
	Filename string
	// Command receives the submitted code for languages that evaluate it inline.
	Command func(code string) []string
	Stdin   func(stdin string) string
}

func fixed(cmd ...string) func(string) []string {
	return func(string) []string { return cmd }
}

func compileAndRun(compile string) func(string) []string {
	return fixed("bash", "-c", compile+" && ./program")
}

var tsCompilerOptions = `{"module":"CommonJS","target":"ES2018"}`

var configs = map[languages.Language]Config{
	languages.Python: {
		Memory:   500 * units.MiB,
		Filename: "main.py",
		Command:  fixed("python", "main.py"),
	},
	languages.JavaScript: {
		Memory:   50 * units.MiB,
		Filename: "main.js",
		Command:  fixed("node", "main.js"),
	},
	languages.TypeScript: {
		Memory: 256 * units.MiB,
		Command: func(code string) []string {
			return []string{"ts-node", "--transpile-only", "--compilerOptions", tsCompilerOptions, "-e", code}
		},
	},
	languages.C: {
		Memory:   256 * units.MiB,
		Filename: "main.c",
		Command:  compileAndRun("gcc main.c -o program"),
	},
	languages.Cpp: {
		Memory:   256 * units.MiB,
		Filename: "main.cpp",
		Command:  compileAndRun("g++ -std=c++17 main.cpp -o program"),
	},
	languages.Go: {
		Memory:   256 * units.MiB,
		Filename: "main.go",
		Command:  fixed("go", "run", "main.go"),
		Stdin: func(stdin string) string {
			if stdin == "" {
				return stdin
			}
			return stdin + "\n"
		},
	},
	languages.Swift: {
		Memory:   256 * units.MiB,
		Filename: "main.swift",
		Command:  fixed("bash", "-c", "swift main.swift"),
	},
	languages.Rust: {
		Memory:   256 * units.MiB,
		Filename: "main.rs",
		Command:  compileAndRun("rustc main.rs -o program"),
	},
	languages.Ruby: {
		Memory:   256 * units.MiB,
		Filename: "main.rb",
		Command:  fixed("ruby", "main.rb"),
	},
}

const javaMemory = 512 * units.MiB

type tableStrategy struct {
	lang   languages.Language
	cfg    Config
	images ImageResolver
}

func (s *tableStrategy) Language() languages.Language { return s.lang }

func (s *tableStrategy) BuildRequest(ctx context.Context, code, stdin string) (*sandbox.ExecutionRequest, *model.ExecutionResult, error) {
	img, err := s.images.Resolve(ctx, s.lang)
	if err != nil {
		return nil, nil, err
	}
	req := sandbox.NewRequest(img.ImageName, s.cfg.Memory, s.cfg.Command(code)...)
	if s.cfg.Filename != "" {
		req.WithSource(s.cfg.Filename, code)
	}
	if s.cfg.Stdin != nil {
		stdin = s.cfg.Stdin(stdin)
	}
	return req.WithStdin(stdin), nil, nil
}

// javaStrategy names the source file after the public type, as javac requires.
type javaStrategy struct {
	images ImageResolver
}

func (s *javaStrategy) Language() languages.Language { return languages.Java }

func (s *javaStrategy) BuildRequest(ctx context.Context, code, stdin string) (*sandbox.ExecutionRequest, *model.ExecutionResult, error) {
	img, err := s.images.Resolve(ctx, languages.Java)
	if err != nil {
		return nil, nil, err
	}

	found := javasrc.FindPublicTypeName(ctx, code)
	if !found.Found {
		logger.Debug(ctx, "java source rejected", zap.String("reason", found.Diagnostic))
		return nil, model.Failed(found.Diagnostic), nil
	}

	name := found.Name
	script := fmt.Sprintf("javac %s.java && java %s", name, name)
	req := sandbox.NewRequest(img.ImageName, javaMemory, "bash", "-c", script).
		WithSource(name+".java", code).
		WithStdin(stdin)
	return req, nil, nil
}
