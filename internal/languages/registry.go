package languages

import (
	"context"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"go.uber.org/zap"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/logger"
)

// ImageConfig ties a language to the image its code runs in.
type ImageConfig struct {
	Language  Language `json:"language"`
	ImageName string   `json:"imageName"`
}

// ImageInspector is the part of the docker client the registry needs.
type ImageInspector interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
}

// images is fixed at startup. TypeScript runs in the JavaScript image and C in
// the C++ image.
var images = map[Language]ImageConfig{
	Python:     {Language: Python, ImageName: "code-executor-python:latest"},
	JavaScript: {Language: JavaScript, ImageName: "code-executor-javascript:latest"},
	TypeScript: {Language: TypeScript, ImageName: "code-executor-javascript:latest"},
	Java:       {Language: Java, ImageName: "code-executor-java:latest"},
	C:          {Language: C, ImageName: "code-executor-cpp:latest"},
	Cpp:        {Language: Cpp, ImageName: "code-executor-cpp:latest"},
	Go:         {Language: Go, ImageName: "code-executor-go:latest"},
	Swift:      {Language: Swift, ImageName: "code-executor-swift:latest"},
	Rust:       {Language: Rust, ImageName: "code-executor-rust:latest"},
	Ruby:       {Language: Ruby, ImageName: "code-executor-ruby:latest"},
}

// Registry resolves languages to images that exist on the daemon. Images are
// never pulled or built here; operators build them out of band.
type Registry struct {
	inspector ImageInspector
}

func NewRegistry(inspector ImageInspector) *Registry {
	return &Registry{inspector: inspector}
}

// Lookup returns the static entry without touching the daemon.
func (r *Registry) Lookup(lang Language) (ImageConfig, error) {
	cfg, ok := images[lang]
	if !ok {
		return ImageConfig{}, apperr.UnsupportedLanguageError(string(lang))
	}
	return cfg, nil
}

// Resolve returns the image for lang after checking it is present locally.
func (r *Registry) Resolve(ctx context.Context, lang Language) (ImageConfig, error) {
	cfg, err := r.Lookup(lang)
	if err != nil {
		return ImageConfig{}, err
	}
	if _, err := r.inspector.ImageInspect(ctx, cfg.ImageName); err != nil {
		logger.Warn(ctx, "execution image missing", zap.String("image", cfg.ImageName), zap.Error(err))
		return ImageConfig{}, apperr.ImageNotFoundError(cfg.ImageName, err)
	}
	return cfg, nil
}

// List returns every entry in display order.
func (r *Registry) List() []ImageConfig {
	out := make([]ImageConfig, 0, len(All))
	for _, l := range All {
		out = append(out, images[l])
	}
	return out
}

// ImageStatus is one row of Check.
type ImageStatus struct {
	ImageConfig
	Present bool
	Size    int64
	Err     error
}

// Check inspects every configured image.
func (r *Registry) Check(ctx context.Context) []ImageStatus {
	var out []ImageStatus
	for _, cfg := range r.List() {
		st := ImageStatus{ImageConfig: cfg}
		resp, err := r.inspector.ImageInspect(ctx, cfg.ImageName)
		if err != nil {
			st.Err = err
		} else {
			st.Present = true
			st.Size = resp.Size
		}
		out = append(out, st)
	}
	return out
}
