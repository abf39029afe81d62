package tiktok

import (
	"math/rand/v2"
	"strings"
)

var defaultPhrases = []string{
	"Amazing content! 🔥",
	"Love this video 😍",
	"Keep up the great work!",
	"So creative and fun ✨",
}

var defaultHashtags = []string{"#trending", "#foryou", "#viral", "#fyp", "#tiktok", "#explore"}

// CommentConfig holds the pools the simulator draws from.
type CommentConfig struct {
	Phrases  []string `yaml:"phrases"`
	Hashtags []string `yaml:"hashtags"`
	MinTags  int      `yaml:"min_tags"`
	MaxTags  int      `yaml:"max_tags"`
}

func DefaultCommentConfig() CommentConfig {
	return CommentConfig{
		Phrases:  append([]string(nil), defaultPhrases...),
		Hashtags: append([]string(nil), defaultHashtags...),
		MinTags:  2,
		MaxTags:  6,
	}
}

// Simulator fabricates a comment string. It has no way to post anything;
// the output only ends up in the log and the report.
type Simulator struct {
	cfg CommentConfig
	rng *rand.Rand
}

// NewSimulator returns a Simulator. rng may be nil to use the global source.
func NewSimulator(cfg CommentConfig, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, rng: rng}
}

func (s *Simulator) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

// Simulate returns one phrase followed by a random-sized sample of the
// hashtag pool, drawn without replacement.
func (s *Simulator) Simulate() string {
	var phrase string
	if len(s.cfg.Phrases) > 0 {
		phrase = s.cfg.Phrases[s.intN(len(s.cfg.Phrases))]
	}

	tags := s.sampleTags()
	if len(tags) == 0 {
		return phrase
	}
	if phrase == "" {
		return strings.Join(tags, " ")
	}
	return phrase + " " + strings.Join(tags, " ")
}

func (s *Simulator) sampleTags() []string {
	pool := s.cfg.Hashtags
	lo, hi := s.cfg.MinTags, s.cfg.MaxTags
	hi = min(hi, len(pool))
	lo = max(min(lo, hi), 0)
	if hi <= 0 {
		return nil
	}
	k := lo + s.intN(hi-lo+1)

	// Partial Fisher-Yates over indexes: each pool entry is drawn at most once.
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := i + s.intN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]])
	}
	return out
}
