// Package tokenizer turns raw text into normalized search tokens.
//
// Words are split on every rune that is neither a letter nor a number,
// lower-cased for the configured locale, case-folded (so "Straße" and
// "STRASSE" meet) and NFC-normalized. The simple charset
// additionally strips diacritics so "Übung" and "ubung" meet.
//
// In full mode every substring of a word becomes an index token, which lets a
// query for "bild" find "Weiterbildung". Queries are always split into whole words.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mode selects how words are expanded into index tokens.
type Mode int

const (
	// ModeFull indexes every substring of every word.
	ModeFull Mode = iota
	// ModeStrict indexes whole words only.
	ModeStrict
)

// Charset selects the normalization applied after case folding.
type Charset int

const (
	// CharsetDefault lower-cases, case-folds and NFC-normalizes.
	CharsetDefault Charset = iota
	// CharsetSimple also removes diacritics.
	CharsetSimple
)

// DefaultMaxSubstringWord bounds the rune prefix of a word expanded in full mode.
const DefaultMaxSubstringWord = 48

// Encoder is a stateless tokenizer configuration. It is safe for concurrent use.
type Encoder struct {
	locale  language.Tag
	charset Charset
	mode    Mode
	maxWord int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithCharset sets the normalization charset.
func WithCharset(c Charset) Option { return func(e *Encoder) { e.charset = c } }

// WithMode sets the index tokenization mode.
func WithMode(m Mode) Option { return func(e *Encoder) { e.mode = m } }

// WithMaxSubstringWord sets how many leading runes of a word are expanded in full mode.
func WithMaxSubstringWord(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxWord = n
		}
	}
}

// New creates an Encoder for locale. Defaults: full mode, default charset.
func New(locale language.Tag, opts ...Option) Encoder {
	e := Encoder{locale: locale, maxWord: DefaultMaxSubstringWord}
	for _, o := range opts {
		o(&e)
	}
	return e
}

// Locale returns the encoder locale.
func (e Encoder) Locale() language.Tag { return e.locale }

// Words splits text into normalized words, keeping order and repeats.
func (e Encoder) Words(text string) []string {
	if text == "" {
		return nil
	}
	text = e.normalize(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Tokens returns the distinct index tokens of text in first-seen order.
func (e Encoder) Tokens(text string) []string {
	words := e.Words(text)
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(words)*4)
	out := make([]string, 0, len(words)*4)
	add := func(tok string) {
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	for _, w := range words {
		add(w)
		if e.mode != ModeFull {
			continue
		}
		rs := []rune(w)
		if len(rs) > e.maxWord {
			rs = rs[:e.maxWord]
		}
		for i := range rs {
			for j := i + 1; j <= len(rs); j++ {
				add(string(rs[i:j]))
			}
		}
	}
	return out
}

// Prefixes returns the index prefixes of a normalized word, shortest first.
// In strict mode only the word itself is returned.
func (e Encoder) Prefixes(word string) []string {
	if word == "" {
		return nil
	}
	if e.mode != ModeFull {
		return []string{word}
	}
	rs := []rune(word)
	n := len(rs)
	if n > e.maxWord {
		n = e.maxWord
	}
	out := make([]string, 0, n+1)
	for i := 1; i <= n; i++ {
		out = append(out, string(rs[:i]))
	}
	if n < len(rs) {
		out = append(out, word)
	}
	return out
}

func (e Encoder) normalize(text string) string {
	// cases.Caser keeps state, so a fresh one per call keeps Encoder shareable.
	s := cases.Fold().String(cases.Lower(e.locale).String(text))
	if e.charset == CharsetSimple {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if out, _, err := transform.String(t, s); err == nil {
			return out
		}
	}
	return norm.NFC.String(s)
}
