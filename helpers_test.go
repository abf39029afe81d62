package tiktok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func nullLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func hookContains(hook *test.Hook, substr string) bool {
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// fakePage is a scripted Page. Anchors in stages[i] become visible after
// i+1 scrolls.
type fakePage struct {
	url      string
	navErr   error
	navCalls []string

	stages  [][]string
	scrolls int
	attrErr error

	texts   map[string][]string
	textErr map[string]error
	panicOn string

	state    []byte
	stateErr error
	html     string
}

func (f *fakePage) Navigate(ctx context.Context, url string, _ time.Duration) error {
	f.navCalls = append(f.navCalls, url)
	if f.navErr != nil {
		return f.navErr
	}
	f.url = url
	return ctx.Err()
}

func (f *fakePage) WaitElement(string, time.Duration) error {
	if len(f.visible()) == 0 {
		return errNoMatch
	}
	return nil
}

func (f *fakePage) ScrollBy(float64) error {
	f.scrolls++
	return nil
}

func (f *fakePage) visible() []string {
	var out []string
	for i := 0; i < f.scrolls && i < len(f.stages); i++ {
		out = append(out, f.stages[i]...)
	}
	return out
}

func (f *fakePage) Attributes(_, _ string) ([]string, error) {
	if f.attrErr != nil {
		return nil, f.attrErr
	}
	return f.visible(), nil
}

func (f *fakePage) Texts(selector string) ([]string, error) {
	if f.panicOn != "" && selector == f.panicOn {
		panic("element detached")
	}
	if err := f.textErr[selector]; err != nil {
		return nil, err
	}
	return f.texts[selector], nil
}

func (f *fakePage) State() ([]byte, error) {
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	if f.state == nil {
		return nil, fmt.Errorf("%w: no state", ErrInvalidResponse)
	}
	return f.state, nil
}

func (f *fakePage) HTML() (string, error) { return f.html, nil }

func (f *fakePage) URL() string { return f.url }

// videoHTML renders a video page with the markers the extractor looks for.
// Empty views/likes omit the element; a non-empty state is embedded as
// SIGI_STATE.
func videoHTML(views, likes string, comments []string, state string) string {
	var b strings.Builder
	b.WriteString(`<html><head></head><body>`)
	if views != "" {
		b.WriteString(`<strong data-e2e="video-views">` + views + `</strong>`)
	}
	if likes != "" {
		b.WriteString(`<strong data-e2e="like-count">` + likes + `</strong>`)
	}
	for _, c := range comments {
		b.WriteString(`<p data-e2e="comment-level-1">` + c + `</p>`)
	}
	if state != "" {
		b.WriteString(`<script id="SIGI_STATE" type="application/json">` + state + `</script>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// profileHTML renders a profile page linking to the given hrefs.
func profileHTML(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div data-e2e="user-post-item-list">`)
	for _, h := range hrefs {
		b.WriteString(`<div><a href="` + h + `">video</a></div>`)
	}
	b.WriteString(`</div><a href="/about">about</a></body></html>`)
	return b.String()
}

// sigiState returns a SIGI_STATE payload holding one item.
func sigiState(moduleKey, id, author, plays, diggs string) string {
	return `{"` + moduleKey + `":{"` + id + `":{"id":"` + id + `","author":"` + author +
		`","stats":{"playCount":` + plays + `,"diggCount":` + diggs + `}}}}`
}

func testDiscoveryConfig() DiscoveryConfig {
	cfg := DefaultDiscoveryConfig()
	cfg.Delays = NoDelays()
	cfg.ScrollIterations = 2
	return cfg
}

func testExtractConfig() ExtractConfig {
	return ExtractConfig{
		NavTimeout:  time.Second,
		Selectors:   DefaultSelectors(),
		StatePolicy: StateWhenNoComments,
		Delays:      NoDelays(),
	}
}

// memorySink collects report rows.
type memorySink struct {
	rows []ReportRow
	err  error
}

func (m *memorySink) Append(row ReportRow) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, row)
	return nil
}
