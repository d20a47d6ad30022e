package sandbox

import (
	"errors"

	"github.com/docker/go-units"
)

const (
	DefaultCPUShares   int64 = 512
	DefaultNetworkMode       = "none"
	DefaultMemory      int64 = 256 * units.MiB
)

// ExecutionRequest is a fully resolved description of one container run.
// It is built per call and never shared between containers.
type ExecutionRequest struct {
	ImageName        string
	Command          []string
	MemoryLimitBytes int64
	CPUShares        int64
	NetworkMode      string
	AutoRemove       bool

	// SourceCode and SourceFilename are injected together or not at all.
	SourceCode     string
	SourceFilename string
	Stdin          string
}

// NewRequest fills the isolation defaults shared by every language.
func NewRequest(image string, memory int64, cmd ...string) *ExecutionRequest {
	return &ExecutionRequest{
		ImageName:        image,
		Command:          cmd,
		MemoryLimitBytes: memory,
		CPUShares:        DefaultCPUShares,
		NetworkMode:      DefaultNetworkMode,
		AutoRemove:       true,
	}
}

// WithSource attaches the file to inject into the working directory.
func (r *ExecutionRequest) WithSource(filename, code string) *ExecutionRequest {
	r.SourceFilename = filename
	r.SourceCode = code
	return r
}

// WithStdin sets the input written to the process after start.
func (r *ExecutionRequest) WithStdin(stdin string) *ExecutionRequest {
	r.Stdin = stdin
	return r
}

// HasSource reports whether a file is injected before start.
func (r *ExecutionRequest) HasSource() bool {
	return r.SourceFilename != ""
}

var (
	ErrNoImage           = errors.New("execution request has no image")
	ErrNoCommand         = errors.New("execution request has no command")
	ErrSourceWithoutName = errors.New("source code supplied without a filename")
	ErrNameWithoutSource = errors.New("source filename supplied without code")
)

func (r *ExecutionRequest) Validate() error {
	if r.ImageName == "" {
		return ErrNoImage
	}
	if len(r.Command) == 0 {
		return ErrNoCommand
	}
	if r.SourceCode != "" && r.SourceFilename == "" {
		return ErrSourceWithoutName
	}
	if r.SourceFilename != "" && r.SourceCode == "" {
		return ErrNameWithoutSource
	}
	return nil
}
