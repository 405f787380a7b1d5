package fetch

import "fmt"

// FetchError reports a failed table retrieval: either the page could not
// be fetched or the selector matched nothing. It carries enough context to
// identify the season/page that failed; callers isolate the failure rather
// than abort the run.
type FetchError struct {
	URL      string
	Selector string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("fetch table %q from %s: %v", e.Selector, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
