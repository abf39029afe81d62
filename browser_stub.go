//go:build unittest

package tiktok

import "fmt"

func OpenSession(cfg SessionConfig) (*Session, error) {
	return nil, fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}
