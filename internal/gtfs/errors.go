package gtfs

import (
	"errors"
	"fmt"
)

var (
	// ErrTransientFetch marks network failures and non-200 responses. The
	// previous snapshot keeps serving.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrMalformedFeed marks responses that are reachable but unusable. It is
	// handled exactly like ErrTransientFetch.
	ErrMalformedFeed = errors.New("malformed feed")

	// ErrMissingTable is returned when a required archive table is absent.
	ErrMissingTable = fmt.Errorf("%w: missing required table", ErrMalformedFeed)

	// ErrEmptyTable is returned when a required archive table has no rows.
	ErrEmptyTable = fmt.Errorf("%w: empty table", ErrMalformedFeed)

	// ErrNotLoaded is returned when no schedule has been loaded yet.
	ErrNotLoaded = errors.New("schedule not loaded")
)
