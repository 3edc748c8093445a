// Package nlp provides local fallbacks for lightweight text features so the
// pipeline degrades gracefully when the oracle omits optional sections.
package nlp

import (
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// WordCount tokenizes text and counts word tokens. Used for provenance
// metadata on analysis records.
func WordCount(text string) int {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return len(strings.Fields(text))
	}

	count := 0
	for _, tok := range doc.Tokens() {
		if strings.ContainsAny(tok.Text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") {
			count++
		}
	}
	return count
}

// KeyPhrases extracts up to max noun phrases from text, most frequent first.
// It is a fallback for when key phrase extraction was requested but the
// oracle returned none; quality is below the oracle's but never empty for
// non-trivial input.
func KeyPhrases(text string, max int) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	freq := map[string]int{}
	order := map[string]int{}

	var current []string
	flush := func(pos int) {
		if len(current) == 0 {
			return
		}
		phrase := strings.ToLower(strings.Join(current, " "))
		current = nil
		if len(phrase) < 3 {
			return
		}
		if _, seen := freq[phrase]; !seen {
			order[phrase] = pos
		}
		freq[phrase]++
	}

	for i, tok := range doc.Tokens() {
		// Adjectives and nouns chain into candidate phrases; anything else
		// terminates the current chain.
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			current = append(current, tok.Text)
			continue
		}
		flush(i)
	}
	flush(len(doc.Tokens()))

	phrases := make([]string, 0, len(freq))
	for phrase := range freq {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if freq[phrases[i]] != freq[phrases[j]] {
			return freq[phrases[i]] > freq[phrases[j]]
		}
		return order[phrases[i]] < order[phrases[j]]
	})

	if max > 0 && len(phrases) > max {
		phrases = phrases[:max]
	}
	return phrases
}
