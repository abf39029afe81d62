package tiktok

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

const defaultLocale = "en-US"

// PickIdentity chooses a user agent uniformly from the pool. rng may be nil.
func PickIdentity(rng *rand.Rand) SessionIdentity {
	var i int
	if rng == nil {
		i = rand.IntN(len(userAgents))
	} else {
		i = rng.IntN(len(userAgents))
	}
	return SessionIdentity{UserAgent: userAgents[i], Locale: defaultLocale}
}

// SessionConfig configures OpenSession.
type SessionConfig struct {
	Headless bool
	// Proxy is a fixed upstream proxy handed to the browser launcher.
	Proxy    string
	Identity SessionIdentity
	// BlockResources drops image, media and font requests.
	BlockResources bool
}

type release struct {
	name string
	fn   func() error
}

// Session owns one browser, one browser context and one page.
type Session struct {
	Identity SessionIdentity

	page     Page
	releases []release
	closed   bool
}

func (s *Session) Page() Page { return s.page }

// onClose registers a release. Later registrations run first, so the page
// goes before its context and the context before the browser.
func (s *Session) onClose(name string, fn func() error) {
	s.releases = append([]release{{name: name, fn: fn}}, s.releases...)
}

// Close attempts every release even when an earlier one fails and returns
// the joined errors. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, r := range s.releases {
		if err := runRelease(r); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", r.name, err))
		}
	}
	s.page = nil
	return errors.Join(errs...)
}

func runRelease(r release) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.fn()
}
