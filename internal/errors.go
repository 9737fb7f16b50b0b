package internal

import "fmt"

// The pipeline distinguishes a closed set of upstream failures. RateLimited
// aborts the whole run, everything else only fails the current player.

type RateLimitedError struct {
	RetryAfterSeconds *int
	Message           string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfterSeconds != nil {
		return fmt.Sprintf("riot API rate limited, retry after %ds", *e.RetryAfterSeconds)
	}
	return "riot API rate limited"
}

type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("riot API request failed: %d %s", e.Status, e.Message)
}

type ResolutionFailedError struct {
	GameName string
	TagLine  string
}

func (e *ResolutionFailedError) Error() string {
	return fmt.Sprintf("could not resolve puuid for %s#%s", e.GameName, e.TagLine)
}

type MalformedResponseError struct {
	Expected string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed riot API response, expected %s", e.Expected)
}

// truncateMessage keeps upstream error bodies from flooding logs and rows.
func truncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
