package domain

import "errors"

// ErrorKind classifies a failure for the transport layer.
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota
	KindNotFound
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "bad_request"
	}
}

// CredentialsMessage is the only detail ever returned for a failed
// authentication check.
const CredentialsMessage = "Could not validate credentials"

// Error tags an underlying failure with the kind the caller should see.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Tag wraps err with kind. An error that is already Unauthenticated keeps its tag.
func Tag(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Kind == KindUnauthenticated {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// Unauthenticated returns the generic credential failure.
func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Err: errors.New(CredentialsMessage)}
}

// KindOf reports the kind err was tagged with, defaulting to KindBadRequest.
func KindOf(err error) ErrorKind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindBadRequest
}
