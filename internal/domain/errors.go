package domain

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist, and by
	// the snapshot cache when the stored snapshot is for a different date.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnavailable marks a network, HTTP, or parse failure on an
	// upstream fetch. The exchange rate fetcher failing this way is fatal to
	// the run; the board scraper failing this way degrades to an empty quote.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPublishFailed marks a failed publish to the social platform. The
	// caller responds with a single best-effort fallback publish.
	ErrPublishFailed = errors.New("publish failed")
)
