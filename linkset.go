package tiktok

import (
	"math/rand/v2"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var videoPathPattern = regexp.MustCompile(`^/@[^/]+/video/\d+/?$`)

// NormalizeVideoURL resolves href against base and returns the canonical
// absolute video URL (scheme, host and path only). It rejects anything that
// is not a /@handle/video/<id> page on the same site as base.
func NormalizeVideoURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" || !videoPathPattern.MatchString(u.Path) {
		return "", false
	}
	if base != nil && base.Host != "" && !sameSite(base.Hostname(), u.Hostname()) {
		return "", false
	}

	out := url.URL{
		Scheme: u.Scheme,
		Host:   strings.ToLower(u.Host),
		Path:   strings.TrimSuffix(u.Path, "/"),
	}
	return out.String(), true
}

func sameSite(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	ra, errA := publicsuffix.EffectiveTLDPlusOne(a)
	rb, errB := publicsuffix.EffectiveTLDPlusOne(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ra == rb
}

// LinkSet is a bounded set of normalized video URLs.
type LinkSet struct {
	limit int
	links map[string]struct{}
}

// NewLinkSet returns an empty set holding at most limit links.
// A non-positive limit leaves the set unbounded.
func NewLinkSet(limit int) *LinkSet {
	return &LinkSet{limit: limit, links: make(map[string]struct{})}
}

// Add inserts an already normalized URL. It reports whether the set grew.
func (s *LinkSet) Add(link string) bool {
	if link == "" || s.Full() {
		return false
	}
	if _, ok := s.links[link]; ok {
		return false
	}
	s.links[link] = struct{}{}
	return true
}

// Full reports whether the set reached its cap.
func (s *LinkSet) Full() bool {
	return s.limit > 0 && len(s.links) >= s.limit
}

func (s *LinkSet) Len() int { return len(s.links) }

func (s *LinkSet) Contains(link string) bool {
	_, ok := s.links[link]
	return ok
}

// URLs returns the members sorted lexically.
func (s *LinkSet) URLs() []string {
	out := make([]string, 0, len(s.links))
	for l := range s.links {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Pick returns a uniformly random member. rng may be nil.
func (s *LinkSet) Pick(rng *rand.Rand) (string, bool) {
	urls := s.URLs()
	if len(urls) == 0 {
		return "", false
	}
	if rng == nil {
		return urls[rand.IntN(len(urls))], true
	}
	return urls[rng.IntN(len(urls))], true
}
