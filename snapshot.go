package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SnapshotPage serves stored HTML documents keyed by URL. It drives the
// same discovery and extraction code as a live browser, without one:
// scrolling is a no-op and page state comes from JSON script tags.
type SnapshotPage struct {
	pages   map[string]string
	current string
	doc     *goquery.Document
}

// NewSnapshotPage returns a page over url -> HTML documents.
func NewSnapshotPage(pages map[string]string) *SnapshotPage {
	return &SnapshotPage{pages: pages}
}

// LoadSnapshot reads an HTML file and serves it for url.
func LoadSnapshot(path, url string) (*SnapshotPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return NewSnapshotPage(map[string]string{url: string(data)}), nil
}

func (s *SnapshotPage) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	html, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("%w: %s: no snapshot", ErrNavigation, url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	s.current, s.doc = url, doc
	return nil
}

func (s *SnapshotPage) loaded() error {
	if s.doc == nil {
		return ErrBrowserNotReady
	}
	return nil
}

func (s *SnapshotPage) WaitElement(selector string, _ time.Duration) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", errNoMatch, selector)
	}
	return nil
}

func (s *SnapshotPage) ScrollBy(float64) error { return s.loaded() }

func (s *SnapshotPage) Attributes(selector, name string) ([]string, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []string
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if v, ok := sel.Attr(name); ok {
			out = append(out, v)
		}
	})
	return out, nil
}

func (s *SnapshotPage) Texts(selector string) ([]string, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []string
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, strings.TrimSpace(sel.Text()))
	})
	return out, nil
}

// State builds the same {name: value} object the browser adapter returns,
// from <script id="..."> JSON payloads.
func (s *SnapshotPage) State() ([]byte, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	for _, name := range stateSources {
		text := strings.TrimSpace(s.doc.Find(`script[id="` + name + `"]`).First().Text())
		if text == "" || !json.Valid([]byte(text)) {
			continue
		}
		out[name] = json.RawMessage(text)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no state script tags", ErrInvalidResponse)
	}
	return json.Marshal(out)
}

func (s *SnapshotPage) HTML() (string, error) {
	if err := s.loaded(); err != nil {
		return "", err
	}
	return goquery.OuterHtml(s.doc.Selection)
}

func (s *SnapshotPage) URL() string { return s.current }

// SaveSnapshot writes the rendered HTML of page into dir as <name>.html and
// returns the file path.
func SaveSnapshot(page Page, dir, name string) (string, error) {
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, name+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
