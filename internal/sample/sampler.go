package sample

import (
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
	"github.com/MikeSquared-Agency/bloop/internal/segment"
)

// Set maps each sender to the message texts selected for them.
type Set map[string][]string

// Senders returns the senders in the set in sorted order.
func (s Set) Senders() []string {
	out := make([]string, 0, len(s))
	for sender := range s {
		out = append(out, sender)
	}
	sort.Strings(out)
	return out
}

// Options tune the sampler. Zero fields take the defaults.
type Options struct {
	TokenBudget int     // per-sender estimated token budget
	MaxChars    int     // longer candidates are excluded outright
	TopK        int     // size of the "longest remaining" pool
	TopBias     float64 // probability of drawing from the top-K pool
	MinWords    int
	Seed        uint64 // 0 draws a random seed
}

func DefaultOptions() Options {
	return Options{
		TokenBudget: 1000,
		MaxChars:    600,
		TopK:        5,
		TopBias:     0.7,
		MinWords:    3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TokenBudget <= 0 {
		o.TokenBudget = d.TokenBudget
	}
	if o.MaxChars <= 0 {
		o.MaxChars = d.MaxChars
	}
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.TopBias <= 0 || o.TopBias > 1 {
		o.TopBias = d.TopBias
	}
	if o.MinWords <= 0 {
		o.MinWords = d.MinWords
	}
	return o
}

// Sampler draws a per-sender, token-budgeted sample of message text. It owns its
// random source, so use one Sampler per analysis.
type Sampler struct {
	opts Options
	rng  *rand.Rand
}

func New(opts Options) *Sampler {
	opts = opts.withDefaults()
	seed1, seed2 := opts.Seed, opts.Seed^0x9e3779b97f4a7c15
	if opts.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	return &Sampler{opts: opts, rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// EstimateTokens approximates the model token cost of text as 1.3 tokens per word.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}

// CapForSenders is the per-sender message cap: small chats keep more of each
// voice, large groups less.
func CapForSenders(n int) int {
	switch {
	case n <= 2:
		return 40
	case n <= 6:
		return 25
	default:
		return 15
	}
}

// Sample groups sorted messages into topics, keeps the informative ones per
// sender and selects a budget-bounded subset for each sender. Senders with no
// selected text are omitted.
func (s *Sampler) Sample(msgs []chatlog.Message, topicGap time.Duration) Set {
	pools := make(map[string][]string)
	for _, topic := range segment.Topics(msgs, topicGap) {
		for _, m := range topic {
			text := strings.TrimSpace(m.CleanedText)
			if !s.informative(text) {
				continue
			}
			pools[m.Sender] = append(pools[m.Sender], text)
		}
	}

	limit := CapForSenders(len(chatlog.Senders(msgs)))

	senders := make([]string, 0, len(pools))
	for sender := range pools {
		senders = append(senders, sender)
	}
	sort.Strings(senders)

	out := make(Set)
	for _, sender := range senders {
		if picked := s.pick(pools[sender], limit); len(picked) > 0 {
			out[sender] = picked
		}
	}
	return out
}

// informative rejects text that is empty, too short, purely numeric or has no
// letters or digits at all.
func (s *Sampler) informative(text string) bool {
	if text == "" || len(strings.Fields(text)) < s.opts.MinWords {
		return false
	}

	numeric, hasDigit, hasAlnum := true, false, false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			hasDigit, hasAlnum = true, true
		case unicode.IsLetter(r):
			numeric, hasAlnum = false, true
		case unicode.IsSpace(r) || r == '.' || r == ',':
		default:
			numeric = false
		}
	}
	if numeric && hasDigit {
		return false
	}
	return hasAlnum
}

// pick runs the biased random selection over one sender's candidates.
func (s *Sampler) pick(candidates []string, limit int) []string {
	pool := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if utf8.RuneCountInString(c) <= s.opts.MaxChars {
			pool = append(pool, c)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return utf8.RuneCountInString(pool[i]) > utf8.RuneCountInString(pool[j])
	})

	var picked []string
	used := 0
	for len(picked) < limit && len(pool) > 0 {
		var idx int
		if s.rng.Float64() < s.opts.TopBias {
			idx = s.rng.IntN(min(s.opts.TopK, len(pool)))
		} else {
			idx = s.rng.IntN(len(pool))
		}
		c := pool[idx]
		pool = slices.Delete(pool, idx, idx+1)

		cost := EstimateTokens(c)
		if used+cost > s.opts.TokenBudget {
			continue
		}
		used += cost
		picked = append(picked, c)
	}

	s.rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked
}
