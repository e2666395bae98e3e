package reportportal

import (
	"bytes"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMultipartReader(t *testing.T, req recordedRequest) *multipart.Reader {
	t.Helper()
	_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.NotEmpty(t, params["boundary"])
	return multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
}
