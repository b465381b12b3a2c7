// Package auth defines the explicit authentication context that is passed
// from the HTTP layer into every access-layer operation.
package auth

// Identity is the resolved caller of a request.  The zero value is the
// anonymous identity.
type Identity struct {
	UserID uint64
	Staff  bool
}

// Anonymous is the identity of a request without valid credentials.
var Anonymous = Identity{}

// User returns the identity of an authenticated user.
func User(id uint64, staff bool) Identity {
	return Identity{UserID: id, Staff: staff}
}

// Authenticated reports whether the identity belongs to a user.
func (i Identity) Authenticated() bool { return i.UserID != 0 }
