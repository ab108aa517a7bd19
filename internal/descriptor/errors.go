package descriptor

import "errors"

// notFoundError signals a descriptor file that is missing or unreadable.
type notFoundError struct {
	path string
	err  error
}

func (e notFoundError) Error() string { return "descriptor not found: " + e.path + ": " + e.err.Error() }
func (e notFoundError) Unwrap() error { return e.err }

// IsNotFound reports whether err indicates a missing or unreadable descriptor.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// invalidFormatError signals descriptor content that does not decode.
type invalidFormatError struct {
	path string
	err  error
}

func (e invalidFormatError) Error() string {
	return "invalid descriptor " + e.path + ": " + e.err.Error()
}
func (e invalidFormatError) Unwrap() error { return e.err }

// IsInvalidFormat reports whether err indicates an unparsable descriptor.
func IsInvalidFormat(err error) bool {
	var e invalidFormatError
	return errors.As(err, &e)
}

// missingFieldError signals a descriptor without a model path.
type missingFieldError struct {
	path  string
	field string
}

func (e missingFieldError) Error() string {
	return "descriptor " + e.path + " has no " + e.field
}

// IsMissingField reports whether err indicates a descriptor without files.gguf.
func IsMissingField(err error) bool {
	var e missingFieldError
	return errors.As(err, &e)
}
