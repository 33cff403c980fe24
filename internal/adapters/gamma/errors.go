package gamma

import "errors"

// ErrUpstream marks transport and non-200 failures from the feed.
var ErrUpstream = errors.New("market feed request failed")
