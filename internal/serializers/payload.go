package serializers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// Payload is a decoded request body. JSON objects keep their value types;
// form values are strings, or formList for repeated keys.
type Payload map[string]any

// ParseError is a body that could not be decoded at all.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return e.Detail
}

const maxBodyBytes = 1 << 20

// ReadPayload decodes a JSON or form-encoded request body.
func ReadPayload(r *http.Request) (Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &ParseError{Detail: "Form parse error - " + err.Error()}
		}
		return FormPayload(values), nil
	case "multipart/form-data":
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, &ParseError{Detail: "Multipart form parse error - " + err.Error()}
		}
		return FormPayload(r.MultipartForm.Value), nil
	case "", "application/json":
		return JSONPayload(body)
	default:
		return nil, &ParseError{Detail: fmt.Sprintf("Unsupported media type %q in request.", mediaType)}
	}
}

// JSONPayload decodes a JSON object. An empty body is an empty payload.
func JSONPayload(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Detail: "JSON parse error - " + err.Error()}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ValidationError{NonFieldErrors: {fmt.Sprintf(MsgNotDict, jsonTypeName(raw))}}
	}
	return Payload(obj), nil
}

// FormPayload converts form values. The last value wins for scalar fields.
func FormPayload(values map[string][]string) Payload {
	p := make(Payload, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			p[key] = vals[0]
			continue
		}
		p[key] = formList(vals)
	}
	return p
}

// formList holds a repeated form key.
type formList []string

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "list"
	case string:
		return "str"
	case bool:
		return "bool"
	case json.Number, float64:
		return "int"
	default:
		return "dict"
	}
}
