package claim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no authenticated caller was supplied
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the claim does not exist or is not owned by the caller
	ErrNotFound = errors.New("claim not found")
	// ErrResourceFetch means evidence bytes could not be retrieved
	ErrResourceFetch = errors.New("resource fetch failed")
	// ErrDecode means evidence bytes are not a supported raster format
	ErrDecode = errors.New("image decode failed")
)

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
