package interrupt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace", in: "  \t\n", want: nil},
		{name: "digits only", in: "123 456", want: nil},
		{name: "punctuation splits", in: "Yeah, wait... a SECOND!", want: []string{"yeah", "wait", "a", "second"}},
		{name: "hyphen splits", in: "uh-huh", want: []string{"uh", "huh"}},
		{name: "apostrophes kept", in: "don't stop", want: []string{"don't", "stop"}},
		{name: "curly apostrophe", in: "don’t", want: []string{"don't"}},
		{name: "edge apostrophes trimmed", in: "'stop'", want: []string{"stop"}},
		{name: "lone apostrophes dropped", in: "' '' stop", want: []string{"stop"}},
		{name: "digits separate", in: "wait2seconds", want: []string{"wait", "seconds"}},
		{name: "unicode letters", in: "Ça va", want: []string{"ça", "va"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestWordSetNormalizes(t *testing.T) {
	set, err := NewWordSet([]string{"Yeah", "yeah", " OK ", "uh-huh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "uh huh", "yeah"}, set.Words())
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("yeah"))
	assert.False(t, set.Contains("Yeah"), "lookups take already tokenized input")
	assert.False(t, set.Contains("uh"), "phrase tokens are not words on their own")
}

func TestWordSetRejectsEmptyEntry(t *testing.T) {
	_, err := NewWordSet([]string{"ok", "--"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyWord))
}

func TestCommandSetRequiresSingleWord(t *testing.T) {
	_, err := NewCommandSet([]string{"stop", "hold on"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultiWordCommand))

	set, err := NewCommandSet([]string{"STOP!"})
	require.NoError(t, err)
	assert.True(t, set.Contains("stop"))
}

func TestDefaultWordSetsBuild(t *testing.T) {
	_, err := NewWordSet(DefaultIgnoreWords)
	require.NoError(t, err)
	_, err = NewCommandSet(DefaultCommandWords)
	require.NoError(t, err)
}

func TestZeroWordSet(t *testing.T) {
	var set WordSet
	assert.False(t, set.Contains("stop"))
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Words())
}

func TestWordSetCovers(t *testing.T) {
	set, err := NewWordSet(DefaultIgnoreWords)
	require.NoError(t, err)
	tests := []struct {
		in   string
		want bool
	}{
		{in: "yeah", want: true},
		{in: "got it", want: true},
		{in: "okay got it thanks", want: false},
		{in: "okay i see", want: true},
		{in: "uh-huh right", want: true},
		{in: "i", want: false},
		{in: "see it", want: false},
		{in: "got", want: false},
		{in: "it got", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Covers(Tokenize(tt.in)))
		})
	}
}
