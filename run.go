package tiktok

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner wires one scrape: discover (profile mode) or take the video URL,
// extract, simulate a comment and append a report row.
type Runner struct {
	cfg       *Config
	page      Page
	sink      Sink
	log       logrus.FieldLogger
	simulator *Simulator
	rng       *rand.Rand
	now       func() time.Time
}

// NewRunner builds a Runner. rng may be nil to use the global source.
func NewRunner(cfg *Config, page Page, sink Sink, log logrus.FieldLogger, rng *rand.Rand) *Runner {
	return &Runner{
		cfg:       cfg,
		page:      page,
		sink:      sink,
		log:       log,
		simulator: NewSimulator(cfg.Comments, rng),
		rng:       rng,
		now:       time.Now,
	}
}

// Run performs one scrape. Every outcome is logged; the returned error
// only tells the caller whether a report row was written.
func (r *Runner) Run(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			r.log.Errorf("Unhandled error: %v", p)
		}
	}()

	err = r.run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNavigationTimeout):
		r.log.Errorf("Timeout: %v", err)
	case errors.Is(err, ErrNavigation):
		r.log.Errorf("Navigation failed: %v", err)
	case errors.Is(err, ErrNoVideoLinks):
		r.log.Warnf("No videos to scrape: %v", err)
	default:
		r.log.Errorf("Unhandled error: %v", err)
	}
	return err
}

func (r *Runner) run(ctx context.Context) error {
	target, isProfile := r.cfg.Target()

	videoURL := target
	var notes []string
	if isProfile {
		d, err := NewDiscoverer(r.page, r.cfg.DiscoveryConfig(), r.log).Discover(ctx, target)
		if err != nil {
			return err
		}
		picked, ok := d.Links.Pick(r.rng)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoVideoLinks, target)
		}
		r.log.Infof("Selected video %s out of %d candidates", picked, d.Links.Len())
		if d.Alternate {
			notes = append(notes, "mobile fallback")
		}
		videoURL = picked
	}

	rec, err := NewExtractor(r.page, r.cfg.ExtractConfig(), r.log).Extract(ctx, videoURL)
	if err != nil {
		return err
	}
	r.log.Infof("Scrape result: views=%s likes=%s comments_found=%d", rec.Views, rec.Likes, len(rec.TopComments))

	if r.cfg.SnapshotDir != "" {
		name := videoIDFromURL(rec.URL)
		if name == "" {
			name = r.now().Format("20060102-150405")
		}
		if path, err := SaveSnapshot(r.page, r.cfg.SnapshotDir, name); err != nil {
			r.log.Warnf("Snapshot not saved: %v", err)
		} else {
			r.log.Infof("Snapshot saved to %s", path)
		}
	}

	comment := r.simulator.Simulate()
	r.log.Infof("Simulated comment (not posted): %s", comment)

	status := "ok"
	if rec.Partial() {
		status = "partial"
	}
	notes = append([]string{status}, notes...)

	row := NewReportRow(r.now(), rec, comment, strings.Join(notes, "; "))
	if err := r.sink.Append(row); err != nil {
		return fmt.Errorf("append report row: %w", err)
	}
	r.log.Info("Report row appended")
	return nil
}

