// Package redact masks personal data in transcripts before they reach logs or event sinks.
package redact

import (
	"regexp"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// MaxTranscriptRunes bounds transcript text written by Transcript.
const MaxTranscriptRunes = 120

var enabled atomic.Bool

var (
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	cardRe  = regexp.MustCompile(`\b\d(?:[ \-]?\d){12,18}\b`)
	phoneRe = regexp.MustCompile(`\b\+?\d[\d\s\-]{7,}\d\b`)
	// Spoken digits as STT tends to emit them: "four one one five five five ...".
	spokenRe = regexp.MustCompile(`(?i)\b(?:(?:zero|oh|one|two|three|four|five|six|seven|eight|nine)[\s\-]+){6,}(?:zero|oh|one|two|three|four|five|six|seven|eight|nine)\b`)
)

func SetEnabled(v bool) {
	enabled.Store(v)
}

func Enabled() bool {
	return enabled.Load()
}

// Text masks emails, card numbers and phone numbers (numeric or spoken) when enabled.
func Text(in string) string {
	if !enabled.Load() || strings.TrimSpace(in) == "" {
		return in
	}
	out := emailRe.ReplaceAllString(in, "[REDACTED_EMAIL]")
	out = cardRe.ReplaceAllString(out, "[REDACTED_NUMBER]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	out = spokenRe.ReplaceAllString(out, "[REDACTED_DIGITS]")
	return out
}

// Transcript is Text followed by truncation to MaxTranscriptRunes.
func Transcript(in string) string {
	out := Text(in)
	if utf8.RuneCountInString(out) <= MaxTranscriptRunes {
		return out
	}
	runes := []rune(out)
	return string(runes[:MaxTranscriptRunes]) + "…"
}
