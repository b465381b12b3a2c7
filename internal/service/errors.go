package service

import "errors"

// ErrUnauthenticated is returned by every operation called with the
// anonymous identity.  Handlers translate it into HTTP 401.
var ErrUnauthenticated = errors.New("authentication credentials were not provided")
