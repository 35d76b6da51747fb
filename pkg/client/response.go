package client

// Response is the outcome of a request: either *Success[T] or *Failure[T].
// The set of implementations is closed.
//
//	switch r := resp.(type) {
//	case *client.Success[model.ShrineInfo]:
//		use(r.Payload)
//	case *client.Failure[model.ShrineInfo]:
//		log(r.Detail)
//	}
type Response[T any] interface {
	// Status is the HTTP status classification.
	Status() Status

	// OK reports whether this is a Success.
	OK() bool

	// Result returns the payload, or the zero value and an *APIError.
	Result() (T, error)

	sealed()
}

// Success carries a decoded payload.
type Success[T any] struct {
	Code    Status
	Payload T
}

func (s *Success[T]) Status() Status { return s.Code }

func (s *Success[T]) OK() bool { return true }

func (s *Success[T]) Result() (T, error) { return s.Payload, nil }

func (*Success[T]) sealed() {}

// Failure carries the reason a request did not produce a payload. Detail is
// the raw response body for API errors, or an error message otherwise.
type Failure[T any] struct {
	Code   Status
	Class  ErrorClass
	Detail string
	Cause  error
}

func (f *Failure[T]) Status() Status { return f.Code }

func (f *Failure[T]) OK() bool { return false }

func (f *Failure[T]) Result() (T, error) {
	var zero T
	return zero, f.Err()
}

// Err converts the failure into an *APIError.
func (f *Failure[T]) Err() error {
	return &APIError{Status: f.Code, Class: f.Class, Detail: f.Detail, Err: f.Cause}
}

func (*Failure[T]) sealed() {}
