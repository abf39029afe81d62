//go:build !unittest

package tiktok

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// OpenSession launches a Chromium instance, opens an incognito context in
// it and creates one stealth page carrying cfg.Identity. On any failure the
// resources acquired so far are released before returning.
func OpenSession(cfg SessionConfig) (*Session, error) {
	s := &Session{Identity: cfg.Identity}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	s.onClose("launcher", func() error {
		l.Kill()
		l.Cleanup()
		return nil
	})

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	s.onClose("browser", browser.Close)

	incognito, err := browser.Incognito()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	s.onClose("context", incognito.Close)

	page, err := stealth.Page(incognito)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create stealth page: %w", err)
	}
	s.onClose("page", page.Close)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      cfg.Identity.UserAgent,
		AcceptLanguage: cfg.Identity.Locale,
	}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}

	if cfg.BlockResources {
		router, err := blockResources(page)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("block resources: %w", err)
		}
		s.onClose("router", router.Stop)
	}

	s.page = newRodPage(page)
	return s, nil
}

func blockResources(page *rod.Page) (*rod.HijackRouter, error) {
	router := page.HijackRequests()
	blocked := []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeMedia,
		proto.NetworkResourceTypeFont,
	}
	for _, rt := range blocked {
		if err := router.Add("*", rt, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return nil, err
		}
	}
	go router.Run()
	return router, nil
}
