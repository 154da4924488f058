// Package tts resolves announcement text to a speech stream URL that a
// player can fetch directly. Synthesis itself happens upstream; this
// package only builds the URL.
package tts

import (
	"fmt"
	"net/url"
	"strconv"
	"unicode/utf8"
)

// MaxTextLength is the longest input the Google Translate endpoint accepts
// in a single request.
const MaxTextLength = 200

// Provider resolves text to a fetchable speech stream URL.
type Provider interface {
	SpeechURL(text, lang string) (string, error)
}

const translateTTSURL = "https://translate.google.com/translate_tts"

// GoogleTranslate builds speech URLs against the public Google Translate
// TTS endpoint.
type GoogleTranslate struct {
	// Endpoint overrides the upstream endpoint. Empty means the default.
	Endpoint string
}

// SpeechURL returns the stream URL for the given text and language.
func (g GoogleTranslate) SpeechURL(text, lang string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	length := utf8.RuneCountInString(text)
	if length > MaxTextLength {
		return "", fmt.Errorf("text is %d characters, the limit is %d", length, MaxTextLength)
	}
	if lang == "" {
		lang = "en"
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = translateTTSURL
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("total", "1")
	q.Set("idx", "0")
	q.Set("textlen", strconv.Itoa(length))
	q.Set("client", "tw-ob")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
