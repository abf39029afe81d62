package tiktok

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var errNoMatch = errors.New("no matching element")

// countPattern matches display counts such as "987", "3,401" or "1.2M".
var countPattern = regexp.MustCompile(`^\d[\d.,]*\s*[KkMmBb]?$`)

// Selectors are the CSS groups the extractor queries. Each group is a
// comma-separated selector list so matches come back in document order.
type Selectors struct {
	Views      string `yaml:"views"`
	Likes      string `yaml:"likes"`
	Emphasized string `yaml:"emphasized"`
	Comments   string `yaml:"comments"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Views:      `strong[data-e2e="video-views"], div[data-e2e="video-views"]`,
		Likes:      `strong[data-e2e="like-count"], div[data-e2e="like-count"]`,
		Emphasized: `strong:not([data-e2e]), b:not([data-e2e]), em:not([data-e2e])`,
		Comments:   `p[data-e2e="comment-level-1"], div[data-e2e="comment-level-1"], p[class*="comment"]`,
	}
}

// StatePolicy decides when the embedded-state stats fallback runs.
type StatePolicy string

const (
	// StateWhenNoComments consults page state only when a metric is missing
	// and the page rendered no comments either.
	StateWhenNoComments StatePolicy = "no-comments"
	// StateWhenMissing consults page state whenever a metric is missing.
	StateWhenMissing StatePolicy = "missing"
)

// ExtractConfig configures an Extractor.
type ExtractConfig struct {
	NavTimeout  time.Duration
	Selectors   Selectors
	StatePolicy StatePolicy
	Delays      Delays
}

// Extractor scrapes engagement metrics and top comments from a video page.
type Extractor struct {
	page Page
	cfg  ExtractConfig
	log  logrus.FieldLogger
}

func NewExtractor(page Page, cfg ExtractConfig, log logrus.FieldLogger) *Extractor {
	if cfg.StatePolicy == "" {
		cfg.StatePolicy = StateWhenNoComments
	}
	return &Extractor{page: page, cfg: cfg, log: log}
}

// extraction is the mutable draft the cascade fills in.
type extraction struct {
	videoID  string
	views    string
	likes    string
	comments []string
}

func (x *extraction) record(url string) VideoRecord {
	rec := VideoRecord{
		URL:         url,
		Views:       x.views,
		Likes:       x.likes,
		TopComments: make([]string, 0, len(x.comments)),
	}
	if rec.Views == "" {
		rec.Views = NotAvailable
	}
	if rec.Likes == "" {
		rec.Likes = NotAvailable
	}
	rec.TopComments = append(rec.TopComments, x.comments...)
	return rec
}

// Extract navigates to videoURL and resolves what it can. Only navigation
// errors are returned; every other failure leaves its field unresolved.
func (e *Extractor) Extract(ctx context.Context, videoURL string) (VideoRecord, error) {
	e.log.Infof("Navigating to video: %s", videoURL)
	if err := e.page.Navigate(ctx, videoURL, e.cfg.NavTimeout); err != nil {
		return VideoRecord{}, err
	}
	if err := e.cfg.Delays.Render.Pause(ctx); err != nil {
		return VideoRecord{}, fmt.Errorf("wait for render: %w", err)
	}

	x := &extraction{videoID: videoIDFromURL(videoURL)}
	runSteps(e.log, x, e.steps())
	return x.record(videoURL), nil
}

func (e *Extractor) steps() []step[extraction] {
	sel := e.cfg.Selectors
	return []step[extraction]{
		{
			name:   "views:marker",
			needed: func(x *extraction) bool { return x.views == "" },
			run: func(x *extraction) (err error) {
				x.views, err = firstText(e.page, sel.Views, nil)
				return err
			},
		},
		{
			name:   "likes:marker",
			needed: func(x *extraction) bool { return x.likes == "" },
			run: func(x *extraction) (err error) {
				x.likes, err = firstText(e.page, sel.Likes, nil)
				return err
			},
		},
		{
			name:   "views:emphasized",
			needed: func(x *extraction) bool { return x.views == "" },
			run: func(x *extraction) (err error) {
				x.views, err = firstText(e.page, sel.Emphasized, looksLikeViews)
				return err
			},
		},
		{
			name: "comments",
			run: func(x *extraction) error {
				texts, err := e.page.Texts(sel.Comments)
				if err != nil {
					return err
				}
				x.comments = topComments(texts)
				return nil
			},
		},
		{
			name:   "stats:state",
			needed: e.needsState,
			run:    e.fillFromState,
		},
	}
}

func (e *Extractor) needsState(x *extraction) bool {
	missing := x.views == "" || x.likes == ""
	if e.cfg.StatePolicy == StateWhenMissing {
		return missing
	}
	return missing && len(x.comments) == 0
}

func (e *Extractor) fillFromState(x *extraction) error {
	raw, err := e.page.State()
	if err != nil {
		return err
	}
	st, ok := parseEmbeddedState(raw)
	if !ok {
		return fmt.Errorf("%w: no embedded item state", ErrInvalidResponse)
	}
	item, ok := st.item(x.videoID)
	if !ok {
		return fmt.Errorf("%w: video %q not in %s", ErrInvalidResponse, x.videoID, st.Source)
	}
	if x.views == "" && item.Views != "" {
		x.views = item.Views
		e.log.WithField("source", st.Source).Debug("views resolved from page state")
	}
	if x.likes == "" && item.Likes != "" {
		x.likes = item.Likes
		e.log.WithField("source", st.Source).Debug("likes resolved from page state")
	}
	return nil
}

// firstText returns the first non-empty text matched by selector that
// satisfies accept (any non-empty text when accept is nil).
func firstText(page Page, selector string, accept func(string) bool) (string, error) {
	texts, err := page.Texts(selector)
	if err != nil {
		return "", err
	}
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if accept == nil || accept(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errNoMatch, selector)
}

func looksLikeViews(text string) bool {
	return countPattern.MatchString(text) || strings.Contains(strings.ToLower(text), "views")
}

// topComments keeps the first MaxTopComments non-empty texts in order.
func topComments(texts []string) []string {
	out := make([]string, 0, MaxTopComments)
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTopComments {
			break
		}
	}
	return out
}
