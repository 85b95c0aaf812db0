package errs

import (
	"errors"
	"fmt"
)

// Kind names the collaborator an error came from.
type Kind string

const (
	KindDatabase   Kind = "database"
	KindTransport  Kind = "transport"
	KindDump       Kind = "dump"
	KindArchive    Kind = "archive"
	KindUpload     Kind = "upload"
	KindFilesystem Kind = "filesystem"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadySent = errors.New("ticket already sent")
)

// Error is a failure of one external call, tagged with its collaborator.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Database(op string, err error) error   { return wrap(KindDatabase, op, err) }
func Transport(op string, err error) error  { return wrap(KindTransport, op, err) }
func Dump(op string, err error) error       { return wrap(KindDump, op, err) }
func Archive(op string, err error) error    { return wrap(KindArchive, op, err) }
func Upload(op string, err error) error     { return wrap(KindUpload, op, err) }
func Filesystem(op string, err error) error { return wrap(KindFilesystem, op, err) }

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
