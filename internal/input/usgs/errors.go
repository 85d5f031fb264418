package usgs

import "fmt"

// FetchError is returned when the feed request fails in transport or with a non-2xx status.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch feed: %v", e.Err)
	}
	return fmt.Sprintf("fetch feed: unexpected status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is returned when the payload or one of its features cannot be read.
type DecodeError struct {
	FeatureIndex int // -1 for payload-level failures
	Err          error
}

func (e *DecodeError) Error() string {
	if e.FeatureIndex < 0 {
		return fmt.Sprintf("decode feed: %v", e.Err)
	}
	return fmt.Sprintf("decode feed: feature %d: %v", e.FeatureIndex, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
