package domain

import "strings"

// Voice identifies a synthesis voice as the engine reports it.
type Voice struct {
	Name string
	Lang string
}

func (v Voice) IsZero() bool {
	return v.Name == ""
}

// MatchesLocale reports whether the voice language shares the primary subtag of lang
// ("en-GB" matches "en-US").
func (v Voice) MatchesLocale(lang string) bool {
	return PrimaryLanguage(v.Lang) != "" && PrimaryLanguage(v.Lang) == PrimaryLanguage(lang)
}

// PrimaryLanguage returns the lower-cased primary subtag of a BCP 47 tag.
func PrimaryLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// Utterance is one text-to-speech request with the parameters in effect when it was issued.
type Utterance struct {
	ID     string
	Text   string
	Voice  Voice
	Lang   string
	Rate   float64
	Pitch  float64
	Volume float64
}
