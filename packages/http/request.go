package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"time"
)

type Request struct {
	Method  string
	URL     string // absolute, or relative to the client's base URL
	Headers map[string]string
	Body    []byte
	Parts   []*Part
	Timeout time.Duration
}

// Part is one section of a multipart body
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Headers     map[string]string
	Content     []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// SetJSON encodes v as the request body and sets the JSON content type
func (r *Request) SetJSON(v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	r.Body = data
	r.SetHeader("Content-Type", "application/json")
	return nil
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// AddPart appends a multipart section. A request with parts is sent as
// multipart/form-data and its Body is ignored.
func (r *Request) AddPart(p *Part) *Request {
	r.Parts = append(r.Parts, p)
	return r
}

// BuildMultipartBody creates a multipart form data body from parts
func BuildMultipartBody(parts []*Part) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range parts {
		if p.Name == "" {
			return nil, "", fmt.Errorf("multipart part must have a name")
		}

		header := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.Name))
		if p.Filename != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, escapeQuotes(p.Filename))
		}
		header.Set("Content-Disposition", disposition)
		if p.ContentType != "" {
			header.Set("Content-Type", p.ContentType)
		}
		for k, v := range p.Headers {
			header.Set(k, v)
		}

		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(p.Content); err != nil {
			return nil, "", err
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
