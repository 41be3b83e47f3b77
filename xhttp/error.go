// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xhttp

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ugorji/go/codec"
)

var errorHandle = &codec.JsonHandle{}

// errorBody is the JSON form of every error response
type errorBody struct {
	Code    int    `codec:"code"`
	Message string `codec:"message"`
}

// Error is an HTTP-specific carrier of error information.  Handlers return an *Error from
// their internal functions, and WriteErrorValue turns it into a response.
type Error struct {
	Code   int
	Header http.Header
	Text   string
}

func (e *Error) StatusCode() int {
	return e.Code
}

func (e *Error) Headers() http.Header {
	return e.Header
}

func (e *Error) Error() string {
	return e.Text
}

// MarshalJSON emits the same message structure as WriteError
func (e *Error) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	err := codec.NewEncoder(&b, errorHandle).Encode(errorBody{Code: e.Code, Message: e.Text})
	return b.Bytes(), err
}

// NewError is a printf-style constructor for Error
func NewError(code int, format string, parameters ...interface{}) *Error {
	return &Error{
		Code: code,
		Text: fmt.Sprintf(format, parameters...),
	}
}

// WriteErrorf provides printf-style functionality for writing out the results of some operation.
// The response status code is set to code, and a JSON message of the form {"code": %d, "message": "%s"} is
// written as the response body.
func WriteErrorf(response http.ResponseWriter, code int, format string, parameters ...interface{}) (int, error) {
	return WriteError(response, code, fmt.Sprintf(format, parameters...))
}

// WriteError writes a JSON message as a response.  The value parameter is subjected to the
// default stringizing rules of the fmt package.
func WriteError(response http.ResponseWriter, code int, value interface{}) (int, error) {
	var b bytes.Buffer
	if err := codec.NewEncoder(&b, errorHandle).Encode(errorBody{Code: code, Message: fmt.Sprint(value)}); err != nil {
		return 0, err
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(code)
	return response.Write(b.Bytes())
}

// WriteErrorValue writes err as a response.  An *Error supplies its own code and headers;
// any other error is reported with defaultCode.
func WriteErrorValue(response http.ResponseWriter, defaultCode int, err error) (int, error) {
	if httpError, ok := err.(*Error); ok {
		for name, values := range httpError.Header {
			for _, v := range values {
				response.Header().Add(name, v)
			}
		}

		return WriteError(response, httpError.Code, httpError.Text)
	}

	return WriteError(response, defaultCode, err)
}
