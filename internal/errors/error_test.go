package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWalksWrappedChain(t *testing.T) {
	cause := stderrors.New("no such image")
	inner := ImageNotFoundError("code-executor-go:latest", cause)
	outer := fmt.Errorf("resolve: %w", inner)

	assert.True(t, Is(outer, ImageNotFound))
	assert.False(t, Is(outer, ExecutionTimeout))
	assert.ErrorIs(t, outer, cause)
	assert.Equal(t, ImageNotFound, GetCode(outer))
}

func TestIsFindsInnerCodeUnderDifferentOuterCode(t *testing.T) {
	err := Wrap(New(ExecutionTimeout), ContainerRuntime)
	assert.True(t, Is(err, ContainerRuntime))
	assert.True(t, Is(err, ExecutionTimeout))
}

func TestGetCodeDefaults(t *testing.T) {
	assert.Equal(t, Success, GetCode(nil))
	assert.Equal(t, InternalServerError, GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, UnsupportedLanguage.HTTPStatus())
	assert.Equal(t, http.StatusGatewayTimeout, ExecutionTimeout.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, ImageNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorCode(1).HTTPStatus())
}

func TestUnsupportedLanguageError(t *testing.T) {
	err := UnsupportedLanguageError("cobol")
	assert.Equal(t, "Unsupported language: cobol", err.Error())
	assert.Equal(t, "cobol", err.Details["language"])
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, DatabaseError))
	assert.Nil(t, Wrapf(nil, DatabaseError, "x"))
}
