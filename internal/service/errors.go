package service

import "errors"

// ErrBadEvent marks an inbound event that passed validation but cannot be decoded.
var ErrBadEvent = errors.New("bad event")
