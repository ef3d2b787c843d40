package gcsadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"landmarket/internal/core/port"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	precondition := &googleapi.Error{Code: http.StatusPreconditionFailed}
	assert.ErrorIs(t, classify(precondition), port.ErrVersionConflict)

	other := &googleapi.Error{Code: http.StatusServiceUnavailable}
	assert.Same(t, other, classify(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}
