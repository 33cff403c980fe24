package ingest

import "errors"

// ErrMarketNotFound means the feed answered but carried zero events
// for the configured slug.
var ErrMarketNotFound = errors.New("award market not found")
