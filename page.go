package tiktok

import (
	"context"
	"time"
)

// Page is the browser surface the discovery and extraction steps drive.
// Implementations return per-call errors; callers decide which are fatal.
type Page interface {
	// Navigate loads url within timeout. A deadline surfaces as
	// ErrNavigationTimeout, any other failure as ErrNavigation.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitElement(selector string, timeout time.Duration) error
	// ScrollBy scrolls forward by fraction of the viewport height.
	ScrollBy(fraction float64) error
	Attributes(selector, name string) ([]string, error)
	Texts(selector string) ([]string, error)
	// State returns a JSON object mapping each embedded state global found
	// on the page to its value.
	State() ([]byte, error)
	HTML() (string, error)
	URL() string
}
