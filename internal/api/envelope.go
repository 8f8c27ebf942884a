// Package api holds the JSON contract shared by the backend and its clients.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var ErrShapeMismatch = errors.New("response shape mismatch")

// Envelope wraps every response body. Exactly one of Data or Error is set.
type Envelope[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Validator is implemented by payloads that can check their own shape after
// decoding.
type Validator interface {
	Validate() error
}

// Decode reads an envelope from r, rejecting unknown fields and a missing
// data member. If T implements Validator its check runs as well.
func Decode[T any](r io.Reader) (*T, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var env Envelope[T]
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: unexpected error envelope: %s", ErrShapeMismatch, env.Error)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrShapeMismatch)
	}
	if v, ok := any(env.Data).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
		}
	}
	return env.Data, nil
}

// DecodeBytes is Decode over an in-memory body.
func DecodeBytes[T any](b []byte) (*T, error) {
	return Decode[T](bytes.NewReader(b))
}

// ErrorMessage extracts the error member of an error envelope. It returns ""
// when body is not an error envelope.
func ErrorMessage(body []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	return env.Error
}
