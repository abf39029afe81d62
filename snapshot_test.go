package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotPage_NotLoaded(t *testing.T) {
	t.Parallel()
	p := NewSnapshotPage(nil)
	if _, err := p.Texts("p"); !errors.Is(err, ErrBrowserNotReady) {
		t.Errorf("expected ErrBrowserNotReady, got %v", err)
	}
	if err := p.Navigate(context.Background(), testVideoURL, 0); !errors.Is(err, ErrNavigation) {
		t.Errorf("expected ErrNavigation, got %v", err)
	}
}

func TestSnapshotPage_Queries(t *testing.T) {
	t.Parallel()
	p := NewSnapshotPage(map[string]string{
		testProfileURL: profileHTML("/@alice/video/1", "/@alice/video/2"),
	})
	if err := p.Navigate(context.Background(), testProfileURL, 0); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if p.URL() != testProfileURL {
		t.Errorf("unexpected URL %q", p.URL())
	}
	hrefs, err := p.Attributes(defaultLinkSelector, "href")
	if err != nil || strings.Join(hrefs, " ") != "/@alice/video/1 /@alice/video/2" {
		t.Errorf("unexpected hrefs %v (%v)", hrefs, err)
	}
	if err := p.WaitElement(defaultLinkSelector, 0); err != nil {
		t.Errorf("WaitElement: %v", err)
	}
	if err := p.WaitElement(`[data-e2e="nothing"]`, 0); !errors.Is(err, errNoMatch) {
		t.Errorf("expected errNoMatch, got %v", err)
	}
	if _, err := p.State(); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse without state tags, got %v", err)
	}
}

func TestSnapshotPage_State(t *testing.T) {
	t.Parallel()
	html := videoHTML("", "", nil, sigiState("ItemModule", "7001", "alice", "900", "12"))
	p := NewSnapshotPage(map[string]string{testVideoURL: html})
	if err := p.Navigate(context.Background(), testVideoURL, 0); err != nil {
		t.Fatal(err)
	}
	raw, err := p.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		t.Fatal(err)
	}
	if _, ok := top["SIGI_STATE"]; !ok {
		t.Errorf("expected SIGI_STATE key, got %s", raw)
	}
	st, ok := parseEmbeddedState(raw)
	if !ok {
		t.Fatal("state not parseable")
	}
	it, ok := st.item("7001")
	if !ok || it.Views != "900" || it.Likes != "12" {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "snaps")
	src := NewSnapshotPage(map[string]string{testVideoURL: videoHTML("42", "7", []string{"nice"}, "")})
	if err := src.Navigate(context.Background(), testVideoURL, 0); err != nil {
		t.Fatal(err)
	}
	path, err := SaveSnapshot(src, dir, "7001")
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "7001.html" {
		t.Errorf("unexpected snapshot path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	replay, err := LoadSnapshot(path, testVideoURL)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	rec := extractFrom(t, replay, testExtractConfig())
	if rec.Views != "42" || rec.Likes != "7" || strings.Join(rec.TopComments, "") != "nice" {
		t.Errorf("replayed record differs: %+v", rec)
	}
}
