// Package aggregate turns raw message text into word frequencies and
// user activity rankings.
package aggregate

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var mentionPattern = regexp.MustCompile(`@\w+`)

// WordConfig controls word extraction and the size of the result.
type WordConfig struct {
	// MaxWordCount caps the number of entries returned by Top.
	// Zero or negative means unlimited.
	MaxWordCount int

	// MinWordLength is the minimum word length in runes.
	MinWordLength int

	// StopWords are discarded after segmentation.
	StopWords map[string]struct{}
}

// WordCount is a single word with its occurrence count.
type WordCount struct {
	Word  string
	Count int
}

// RankEntry is one row of the user activity ranking.
type RankEntry struct {
	Medal      string
	SenderID   string
	SenderName string
	Count      int
}

// UserActivity is a per-user message count within a window.
type UserActivity struct {
	SenderID   string
	SenderName string
	Count      int
}

// Result holds everything a report needs for one session window.
type Result struct {
	Words         []WordCount
	Ranking       []RankEntry
	TotalMessages int64
	TotalUsers    int
}

// Counter accumulates word frequencies over a stream of messages.
// Feed it texts one at a time and call Top once.
type Counter struct {
	cfg    WordConfig
	seg    Segmenter
	counts map[string]int
	order  []string
}

func NewCounter(seg Segmenter, cfg WordConfig) *Counter {
	return &Counter{
		cfg:    cfg,
		seg:    seg,
		counts: make(map[string]int),
	}
}

// Add segments one message text and folds the surviving words into
// the running counts. Mention tokens are stripped before segmentation.
func (c *Counter) Add(text string) {
	text = mentionPattern.ReplaceAllString(text, " ")
	if strings.TrimSpace(text) == "" {
		return
	}

	for _, word := range c.seg.Segment(text) {
		word = strings.TrimSpace(word)
		if !c.keep(word) {
			continue
		}

		if _, seen := c.counts[word]; !seen {
			c.order = append(c.order, word)
		}
		c.counts[word]++
	}
}

func (c *Counter) keep(word string) bool {
	if utf8.RuneCountInString(word) < c.cfg.MinWordLength {
		return false
	}
	if _, stopped := c.cfg.StopWords[word]; stopped {
		return false
	}
	if isDigits(word) || isASCIISymbols(word) {
		return false
	}

	return true
}

// Top returns up to MaxWordCount entries ordered by descending count.
// Words with equal counts keep the order they were first seen in, so
// the same input always produces the same output.
func (c *Counter) Top() []WordCount {
	result := make([]WordCount, 0, len(c.order))
	for _, word := range c.order {
		result = append(result, WordCount{Word: word, Count: c.counts[word]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if c.cfg.MaxWordCount > 0 && len(result) > c.cfg.MaxWordCount {
		result = result[:c.cfg.MaxWordCount]
	}

	return result
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func isASCIISymbols(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// Ranking orders user activity by descending count, breaking ties by
// display name, and decorates the top entries with medals. When fewer
// medals than entries are configured the last medal is reused.
func Ranking(users []UserActivity, limit int, medals []string) []RankEntry {
	if limit <= 0 || len(users) == 0 {
		return nil
	}

	sorted := make([]UserActivity, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].SenderName < sorted[j].SenderName
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]RankEntry, 0, len(sorted))
	for i, u := range sorted {
		medal := ""
		switch {
		case i < len(medals):
			medal = medals[i]
		case len(medals) > 0:
			medal = medals[len(medals)-1]
		}
		entries = append(entries, RankEntry{
			Medal:      medal,
			SenderID:   u.SenderID,
			SenderName: u.SenderName,
			Count:      u.Count,
		})
	}

	return entries
}
