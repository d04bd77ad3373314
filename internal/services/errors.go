package services

import "errors"

// ErrInvalidCredentials covers both unknown usernames and wrong passwords,
// so a login failure cannot be used to probe which usernames exist.
var ErrInvalidCredentials = errors.New("wrong username or password")

// ErrForbidden is returned when an authenticated user attempts to mutate
// a blog entry they do not own.
var ErrForbidden = errors.New("forbidden")
