package tiktok

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL       = "https://www.tiktok.com"
	defaultAlternateHost = "m.tiktok.com"
	defaultLinkSelector  = `a[href*="/video/"]`
)

// DiscoveryConfig configures a Discoverer.
type DiscoveryConfig struct {
	ScrollIterations int           `yaml:"scroll_iterations"`
	MaxLinks         int           `yaml:"max_links"`
	ScrollFraction   float64       `yaml:"scroll_fraction"`
	NavTimeout       time.Duration `yaml:"-"`
	LinkWait         time.Duration `yaml:"link_wait"`
	LinkSelector     string        `yaml:"link_selector"`
	AlternateHost    string        `yaml:"alternate_host"`
	Delays           Delays        `yaml:"-"`
}

func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		ScrollIterations: 6,
		MaxLinks:         50,
		ScrollFraction:   0.9,
		NavTimeout:       40 * time.Second,
		LinkWait:         15 * time.Second,
		LinkSelector:     defaultLinkSelector,
		AlternateHost:    defaultAlternateHost,
		Delays:           DefaultDelays(),
	}
}

// Discovery is the outcome of a profile scan.
type Discovery struct {
	Links      *LinkSet
	ProfileURL string
	// Alternate is set when the links came from the alternate host.
	Alternate bool
}

// Discoverer collects candidate video URLs from a profile page.
type Discoverer struct {
	page Page
	cfg  DiscoveryConfig
	log  logrus.FieldLogger
}

func NewDiscoverer(page Page, cfg DiscoveryConfig, log logrus.FieldLogger) *Discoverer {
	if cfg.LinkSelector == "" {
		cfg.LinkSelector = defaultLinkSelector
	}
	return &Discoverer{page: page, cfg: cfg, log: log}
}

// Discover scans profileURL and, if it yields nothing, the same profile on
// the alternate host. Navigation failures are returned as is; an empty
// result after both attempts is ErrNoVideoLinks.
func (d *Discoverer) Discover(ctx context.Context, profileURL string) (Discovery, error) {
	links, err := d.scan(ctx, profileURL)
	if err != nil {
		return Discovery{}, err
	}
	if links.Len() > 0 {
		return Discovery{Links: links, ProfileURL: profileURL}, nil
	}

	if alt, ok := alternateProfileURL(profileURL, d.cfg.AlternateHost); ok {
		d.log.Infof("No video links on %s, retrying on %s", profileURL, alt)
		links, err = d.scan(ctx, alt)
		if err != nil {
			return Discovery{}, err
		}
		if links.Len() > 0 {
			return Discovery{Links: links, ProfileURL: alt, Alternate: true}, nil
		}
	}
	return Discovery{}, fmt.Errorf("%w: %s", ErrNoVideoLinks, profileURL)
}

func (d *Discoverer) scan(ctx context.Context, profileURL string) (*LinkSet, error) {
	d.log.Infof("Navigating to profile: %s", profileURL)
	if err := d.page.Navigate(ctx, profileURL, d.cfg.NavTimeout); err != nil {
		return nil, err
	}
	if err := d.page.WaitElement(d.cfg.LinkSelector, d.cfg.LinkWait); err != nil {
		d.log.Debugf("video anchors not rendered yet: %v", err)
	}

	base := pageBase(d.page, profileURL)
	links := NewLinkSet(d.cfg.MaxLinks)

	for i := 0; i < d.cfg.ScrollIterations && !links.Full(); i++ {
		_ = attempt(d.log, "scroll", func() error {
			return d.page.ScrollBy(d.cfg.ScrollFraction)
		})
		if err := d.cfg.Delays.Scroll.Pause(ctx); err != nil {
			return links, err
		}
		added := 0
		_ = attempt(d.log, "harvest", func() error {
			hrefs, err := d.page.Attributes(d.cfg.LinkSelector, "href")
			if err != nil {
				return err
			}
			added = addLinks(links, base, hrefs)
			return nil
		})
		d.log.Debugf("scroll pass %d: %d new links, %d total", i+1, added, links.Len())
	}

	if !links.Full() {
		_ = attempt(d.log, "state links", func() error {
			n, err := d.stateLinks(links, base, profileURL)
			if n > 0 {
				d.log.Debugf("page state added %d links", n)
			}
			return err
		})
	}

	d.log.Infof("Collected %d candidate video links from %s", links.Len(), profileURL)
	return links, nil
}

// stateLinks synthesizes video URLs from the page's embedded item map.
func (d *Discoverer) stateLinks(links *LinkSet, base *url.URL, profileURL string) (int, error) {
	raw, err := d.page.State()
	if err != nil {
		return 0, err
	}
	st, ok := parseEmbeddedState(raw)
	if !ok {
		return 0, fmt.Errorf("%w: no embedded item state", ErrInvalidResponse)
	}
	fallbackHandle := handleFromProfileURL(profileURL)
	hrefs := make([]string, 0, len(st.Items))
	for _, it := range st.Items {
		author := it.Author
		if author == "" {
			author = fallbackHandle
		}
		if author == "" || it.ID == "" {
			continue
		}
		hrefs = append(hrefs, "/@"+author+"/video/"+it.ID)
	}
	return addLinks(links, base, hrefs), nil
}

// addLinks normalizes and inserts hrefs until links is full.
func addLinks(links *LinkSet, base *url.URL, hrefs []string) int {
	added := 0
	for _, h := range hrefs {
		if links.Full() {
			break
		}
		if u, ok := NormalizeVideoURL(base, h); ok && links.Add(u) {
			added++
		}
	}
	return added
}

func pageBase(page Page, fallback string) *url.URL {
	if u, err := url.Parse(page.URL()); err == nil && u.IsAbs() {
		return u
	}
	u, _ := url.Parse(fallback)
	return u
}

// alternateProfileURL swaps the host of profileURL for host.
func alternateProfileURL(profileURL, host string) (string, bool) {
	if host == "" {
		return "", false
	}
	u, err := url.Parse(profileURL)
	if err != nil || u.Host == "" || strings.EqualFold(u.Hostname(), host) {
		return "", false
	}
	u.Host = host
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), true
}

// ProfileURL turns an account handle ("name", "@name") or a full profile
// URL into a profile URL on the main host.
func ProfileURL(account string) string {
	account = strings.TrimSpace(account)
	if strings.HasPrefix(account, "http://") || strings.HasPrefix(account, "https://") {
		return account
	}
	return defaultBaseURL + "/@" + strings.TrimPrefix(account, "@")
}

func handleFromProfileURL(profileURL string) string {
	u, err := url.Parse(profileURL)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if strings.HasPrefix(seg, "@") && len(seg) > 1 {
			return seg[1:]
		}
	}
	return ""
}
