// Package tokenizer normalises text into searchable tokens. It lower-cases
// input, deletes punctuation, splits on whitespace, removes stop-words read
// from a configured file, and applies a Porter stemmer.
package tokenizer

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/kljensen/snowball/english"
)

// punctuation characters are deleted outright, not treated as separators:
// "don't" becomes "dont", not "don t".
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalizer turns raw text into an ordered sequence of normalised tokens.
// The stop-word set is loaded from the configured file at most once; a
// missing file degrades to an empty set.
type Normalizer struct {
	stopwordsPath string
	once          sync.Once
	stopwords     map[string]struct{}
	logger        *slog.Logger
}

// New creates a Normalizer reading stop-words from the given path. An empty
// path disables stop-word filtering.
func New(stopwordsPath string) *Normalizer {
	return &Normalizer{
		stopwordsPath: stopwordsPath,
		logger:        slog.Default().With("component", "tokenizer"),
	}
}

// Normalize lower-cases text, strips punctuation, splits on whitespace,
// drops stop-words, and stems each remaining word. The returned sequence
// preserves order and duplicates; blank input yields a nil slice.
func (n *Normalizer) Normalize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, strings.ToLower(text))

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return nil
	}

	stopwords := n.loadStopwords()
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, english.Stem(word, true))
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// loadStopwords reads the stop-word file once and caches the set for the
// lifetime of the Normalizer.
func (n *Normalizer) loadStopwords() map[string]struct{} {
	n.once.Do(func() {
		n.stopwords = make(map[string]struct{})
		if n.stopwordsPath == "" {
			return
		}
		f, err := os.Open(n.stopwordsPath)
		if err != nil {
			// Non-fatal: filtering is skipped when the file is absent.
			n.logger.Debug("stop-word file unavailable", "path", n.stopwordsPath, "error", err)
			return
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word != "" {
				n.stopwords[word] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			n.logger.Warn("reading stop-word file", "path", n.stopwordsPath, "error", err)
		}
	})
	return n.stopwords
}
