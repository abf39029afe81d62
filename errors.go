package tiktok

import "errors"

var (
	ErrNavigation        = errors.New("tiktok: navigation failed")
	ErrNavigationTimeout = errors.New("tiktok: navigation timed out")
	ErrNoVideoLinks      = errors.New("tiktok: no video links found")
	ErrBrowserNotReady   = errors.New("tiktok: browser not initialized")
	ErrInvalidResponse   = errors.New("tiktok: invalid response")
	ErrInvalidConfig     = errors.New("tiktok: invalid config")
)
