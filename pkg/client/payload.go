package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Payload is the request body, method and negotiated content types for
// a single call to the backend.
type Payload interface {
	io.Reader

	// Method returns the HTTP method for the request
	Method() string

	// Accept returns the accepted response content type
	Accept() string

	// Type returns the request body content type, or empty when there
	// is no body
	Type() string
}

// File is a named file part within a multipart request
type File struct {
	Path string
	Body io.Reader
}

type request struct {
	method   string
	accept   string
	mimetype string
	buffer   io.Reader
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentTypeAny        = "*/*"
	ContentTypeJson       = "application/json"
	ContentTypeTextStream = "text/event-stream"
	ContentTypeBinary     = "application/octet-stream"
)

// MethodDelete is a payload for a DELETE request without a body
var MethodDelete = NewRequestEx(http.MethodDelete, ContentTypeAny)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRequest returns a GET request payload without a body
func NewRequest() Payload {
	return NewRequestEx(http.MethodGet, ContentTypeAny)
}

// NewRequestEx returns a request payload without a body, with the given
// method and accepted response type
func NewRequestEx(method, accept string) Payload {
	return &request{
		method: method,
		accept: accept,
	}
}

// NewJSONRequest returns a POST request payload with a JSON body
func NewJSONRequest(payload any) (Payload, error) {
	return NewJSONRequestEx(http.MethodPost, payload, ContentTypeJson)
}

// NewJSONRequestEx returns a request payload with a JSON body, with the
// given method and accepted response type
func NewJSONRequestEx(method string, payload any, accept string) (Payload, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if accept == "" {
		accept = ContentTypeJson
	}
	return &request{
		method:   method,
		accept:   accept,
		mimetype: ContentTypeJson,
		buffer:   bytes.NewReader(data),
	}, nil
}

// NewMultipartRequest returns a POST request payload with a multipart
// form body. Fields of the payload struct are written as form values using
// their json tags, and fields of type File are written as file parts.
func NewMultipartRequest(payload any, accept string) (Payload, error) {
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, divyavaani.ErrBadParameter.With("multipart payload must be a struct")
	}

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitempty := tagName(field)
		if name == "" {
			continue
		}
		value := rv.Field(i)
		if omitempty && value.IsZero() {
			continue
		}
		if file, ok := value.Interface().(File); ok {
			part, err := writer.CreateFormFile(name, filepath.Base(file.Path))
			if err != nil {
				return nil, err
			}
			if file.Body != nil {
				if _, err := io.Copy(part, file.Body); err != nil {
					return nil, err
				}
			}
		} else if err := writer.WriteField(name, fmt.Sprint(value.Interface())); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	if accept == "" {
		accept = ContentTypeJson
	}
	return &request{
		method:   http.MethodPost,
		accept:   accept,
		mimetype: writer.FormDataContentType(),
		buffer:   &buffer,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (req *request) Read(p []byte) (int, error) {
	if req.buffer == nil {
		return 0, io.EOF
	}
	return req.buffer.Read(p)
}

func (req *request) Method() string {
	return req.method
}

func (req *request) Accept() string {
	return req.accept
}

func (req *request) Type() string {
	if req.buffer == nil {
		return ""
	}
	return req.mimetype
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func tagName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false
	}
	name := parts[0]
	if name == "" {
		name = field.Name
	}
	for _, part := range parts[1:] {
		if part == "omitempty" {
			return name, true
		}
	}
	return name, false
}
