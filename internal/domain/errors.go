package domain

import "fmt"

// FeedFetchFailed is the code carried by every per-source fetch failure,
// regardless of transport (timeout, non-2xx, unreachable host).
const FeedFetchFailed = "FEED_FETCH_FAILED"

// FetchError describes a per-source failure. It is recoverable at the run
// level: the orchestrator records it and excludes the source from aggregation.
type FetchError struct {
	Code           string
	SourceID       string
	URL            string
	HTTPStatus     int
	TimeoutSeconds int
	Message        string
}

func (e *FetchError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ScoringGatewayError means the oracle could not produce a brief after all
// retry attempts, or returned a structurally invalid response. It is
// run-critical: the run transitions to failed.
type ScoringGatewayError struct {
	Attempts int
	Message  string
	Err      error
}

func (e *ScoringGatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scoring gateway: %s (after %d attempts): %v", e.Message, e.Attempts, e.Err)
	}
	return fmt.Sprintf("scoring gateway: %s", e.Message)
}

func (e *ScoringGatewayError) Unwrap() error { return e.Err }

// StoreWriteError reports a failed write batch. The store writer absorbs it
// into its report; it never crosses the writer boundary as an error.
type StoreWriteError struct {
	FailedURLs []string
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write: %d documents failed: %v", len(e.FailedURLs), e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
