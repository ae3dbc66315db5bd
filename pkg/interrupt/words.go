package interrupt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var (
	ErrEmptyWord        = errors.New("word has no alphabetic content")
	ErrMultiWordCommand = errors.New("command word must be a single word")
)

// DefaultIgnoreWords are backchannel fillers that should not stop the agent.
var DefaultIgnoreWords = []string{
	"yeah", "yea", "yep", "yes", "ok", "okay", "hmm", "mhm", "mm",
	"uh", "uhh", "um", "umm", "huh", "uh-huh", "right", "sure", "alright",
	"got it", "i see",
}

// DefaultCommandWords always interrupt, wherever they appear in the utterance.
var DefaultCommandWords = []string{
	"stop", "wait", "no", "cancel", "pause", "hold", "help", "quiet", "enough", "shut",
}

// Tokenize lower-cases text and splits it into runs of letters and apostrophes.
// Apostrophes at the edge of a token are dropped; digits and punctuation separate tokens.
func Tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "’", "'")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// WordSet is an immutable set of lower-cased tokens plus multi-token phrases.
type WordSet struct {
	words   map[string]struct{}
	phrases [][]string
}

// NewWordSet tokenizes every entry. Single-token entries become words; entries
// that tokenize to several tokens ("uh-huh", "got it") only match as a whole phrase.
func NewWordSet(entries []string) (WordSet, error) {
	return buildWordSet(entries, false)
}

// NewCommandSet is NewWordSet but every entry must be exactly one token.
func NewCommandSet(entries []string) (WordSet, error) {
	return buildWordSet(entries, true)
}

func buildWordSet(entries []string, single bool) (WordSet, error) {
	set := WordSet{words: make(map[string]struct{}, len(entries))}
	seen := make(map[string]struct{})
	for _, entry := range entries {
		tokens := Tokenize(entry)
		if len(tokens) == 0 {
			return WordSet{}, fmt.Errorf("%w: %q", ErrEmptyWord, entry)
		}
		if len(tokens) == 1 {
			set.words[tokens[0]] = struct{}{}
			continue
		}
		if single {
			return WordSet{}, fmt.Errorf("%w: %q", ErrMultiWordCommand, entry)
		}
		key := strings.Join(tokens, " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		set.phrases = append(set.phrases, tokens)
	}
	return set, nil
}

func (s WordSet) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Covers reports whether tokens split entirely into members: single words or
// whole phrases. An empty token list is not covered.
func (s WordSet) Covers(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	// reach[i]: tokens[:i] is covered.
	reach := make([]bool, len(tokens)+1)
	reach[0] = true
	for i := 0; i < len(tokens); i++ {
		if !reach[i] {
			continue
		}
		if s.Contains(tokens[i]) {
			reach[i+1] = true
		}
		for _, p := range s.phrases {
			if hasPrefix(tokens[i:], p) {
				reach[i+len(p)] = true
			}
		}
	}
	return reach[len(tokens)]
}

func hasPrefix(tokens, phrase []string) bool {
	if len(phrase) > len(tokens) {
		return false
	}
	for i, w := range phrase {
		if tokens[i] != w {
			return false
		}
	}
	return true
}

func (s WordSet) Len() int { return len(s.words) + len(s.phrases) }

// Words returns the members sorted, phrases space-joined, for logging and tests.
func (s WordSet) Words() []string {
	out := make([]string, 0, s.Len())
	for w := range s.words {
		out = append(out, w)
	}
	for _, p := range s.phrases {
		out = append(out, strings.Join(p, " "))
	}
	sort.Strings(out)
	return out
}
