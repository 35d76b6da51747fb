package client

import (
	"net/http"
	"strconv"
)

// Status classifies the outcome of a request by HTTP status code.
type Status int

// Named statuses the API is documented to return.
const (
	StatusOK                  Status = http.StatusOK
	StatusNotModified         Status = http.StatusNotModified
	StatusBadRequest          Status = http.StatusBadRequest
	StatusUnauthorized        Status = http.StatusUnauthorized
	StatusForbidden           Status = http.StatusForbidden
	StatusNotFound            Status = http.StatusNotFound
	StatusUnprocessableEntity Status = http.StatusUnprocessableEntity
	StatusTooManyRequests     Status = http.StatusTooManyRequests
	StatusInternalServerError Status = http.StatusInternalServerError
	StatusServiceUnavailable  Status = http.StatusServiceUnavailable
)

// Code returns the numeric HTTP status.
func (s Status) Code() int {
	return int(s)
}

// IsSuccess reports whether s is in [200, 300).
func (s Status) IsSuccess() bool {
	return s >= 200 && s < 300
}

func (s Status) String() string {
	if text := http.StatusText(int(s)); text != "" {
		return strconv.Itoa(int(s)) + " " + text
	}
	return strconv.Itoa(int(s))
}

// classifyStatus maps an HTTP status to an error class. It returns "" for
// success codes. Informational and redirect codes the client did not ask for
// (a 304 without a cached entry) count as server errors.
func classifyStatus(code int) ErrorClass {
	switch {
	case code >= 200 && code < 300:
		return ""
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 400 && code < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}
