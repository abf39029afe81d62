package tiktok

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

const defaultQueryTimeout = 10 * time.Second

// stateJS collects every known embedded state global, falling back to the
// JSON script tag of the same id.
const stateJS = `(names) => {
	const out = {};
	for (const name of names) {
		const v = window[name];
		if (v && typeof v === 'object') {
			out[name] = v;
			continue;
		}
		const el = document.getElementById(name);
		if (el && el.textContent) {
			try { out[name] = JSON.parse(el.textContent); } catch (e) {}
		}
	}
	return JSON.stringify(out);
}`

const scrollJS = `(f) => window.scrollBy(0, Math.floor(window.innerHeight * f))`

// rodPage adapts a rod page to Page.
type rodPage struct {
	page         *rod.Page
	queryTimeout time.Duration
}

func newRodPage(page *rod.Page) *rodPage {
	return &rodPage{page: page, queryTimeout: defaultQueryTimeout}
}

func (r *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := r.page.Context(ctx)
	if timeout > 0 {
		p = p.Timeout(timeout)
		defer p.CancelTimeout()
	}

	err := p.Navigate(url)
	if err == nil {
		err = p.WaitLoad()
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s after %v", ErrNavigationTimeout, url, timeout)
	default:
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
}

func (r *rodPage) WaitElement(selector string, timeout time.Duration) error {
	p := r.page.Timeout(timeout)
	defer p.CancelTimeout()
	_, err := p.Element(selector)
	return err
}

func (r *rodPage) ScrollBy(fraction float64) error {
	p := r.page.Timeout(r.queryTimeout)
	defer p.CancelTimeout()
	_, err := p.Eval(scrollJS, fraction)
	return err
}

func (r *rodPage) elements(selector string) (rod.Elements, func(), error) {
	p := r.page.Timeout(r.queryTimeout)
	els, err := p.Elements(selector)
	if err != nil {
		p.CancelTimeout()
		return nil, nil, err
	}
	return els, func() { p.CancelTimeout() }, nil
}

func (r *rodPage) Attributes(selector, name string) ([]string, error) {
	els, done, err := r.elements(selector)
	if err != nil {
		return nil, err
	}
	defer done()

	out := make([]string, 0, len(els))
	for _, el := range els {
		v, err := el.Attribute(name)
		if err != nil || v == nil {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *rodPage) Texts(selector string) ([]string, error) {
	els, done, err := r.elements(selector)
	if err != nil {
		return nil, err
	}
	defer done()

	out := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		out = append(out, strings.TrimSpace(t))
	}
	return out, nil
}

func (r *rodPage) State() ([]byte, error) {
	p := r.page.Timeout(r.queryTimeout)
	defer p.CancelTimeout()
	res, err := p.Eval(stateJS, stateSources)
	if err != nil {
		return nil, fmt.Errorf("evaluate page state: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

func (r *rodPage) HTML() (string, error) {
	p := r.page.Timeout(r.queryTimeout)
	defer p.CancelTimeout()
	return p.HTML()
}

func (r *rodPage) URL() string {
	info, err := r.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}
