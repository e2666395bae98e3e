package http

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response is a fully read backend reply
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header looks a header up case-insensitively
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// ErrorMessage returns the backend's "message" field, or "" when the body
// is not JSON or carries none.
func (r *Response) ErrorMessage() string {
	if !gjson.ValidBytes(r.Body) {
		return ""
	}
	return gjson.GetBytes(r.Body, "message").String()
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}
