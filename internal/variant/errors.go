package variant

import "errors"

var (
	// ErrMalformed indicates a key that does not follow the variant path grammar.
	ErrMalformed = errors.New("malformed variant path")
	// ErrCannotExtract indicates a trigger with no recognizable request or notification shape.
	ErrCannotExtract = errors.New("cannot extract request from trigger")
	// ErrDisallowedResolution indicates a label outside the configured whitelist.
	ErrDisallowedResolution = errors.New("resolution not allowed")

	ErrSourceNotFound   = errors.New("source object not found")
	ErrStoreReadFailed  = errors.New("store read failed")
	ErrTranscodeFailed  = errors.New("transcode failed")
	ErrStoreWriteFailed = errors.New("store write failed")
	ErrListFailed       = errors.New("list failed")
	ErrDeleteFailed     = errors.New("delete failed")
)
