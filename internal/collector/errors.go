package collector

import (
	"errors"
	"fmt"
)

// ErrNoKeywords is returned when a search query is requested with an empty
// keyword list. It is fatal to the run.
var ErrNoKeywords = errors.New("no search keywords configured")

// ErrQueryTooLong is returned when the encoded query would exceed the feed
// endpoint's accepted URL length.
var ErrQueryTooLong = errors.New("encoded search query exceeds URL length limit")

// NetworkError wraps a transport failure or non-2xx response from the feed
// search endpoint. Per-candidate crawl failures are not NetworkErrors; they
// are counted in RunStats and the run continues.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("feed search %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
