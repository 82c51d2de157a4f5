package objectstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestGCSErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("failed to finalize GCS write: %w", &googleapi.Error{Code: 403, Message: "forbidden"})
	assert.Equal(t, "403", gcsErrorCode(wrapped))
	assert.Equal(t, "", gcsErrorCode(errors.New("context canceled")))
}
