// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string matching on driver errors.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the given username or id.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when a user insert violates the unique
// username constraint. Handlers translate it into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrMemberNotFound is returned when a roster operation targets a team
// member id that does not exist. Handlers translate it into HTTP 404.
var ErrMemberNotFound = errors.New("team member not found")

// ErrNameExists is returned when a taxonomy insert or rename collides with
// an existing entry name. Handlers translate it into HTTP 409.
var ErrNameExists = errors.New("name already exists")

// ErrEntryNotFound is returned when a taxonomy operation targets an id that
// does not exist.
var ErrEntryNotFound = errors.New("entry not found")
