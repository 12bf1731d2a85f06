package application

import (
	"strings"

	"voice-assistant/internal/domain"
)

// SelectVoice picks a voice for lang: one whose name contains vendor, else the first in
// the locale, else the first available.
func SelectVoice(voices []domain.Voice, lang, vendor string) (domain.Voice, bool) {
	if len(voices) == 0 {
		return domain.Voice{}, false
	}
	if vendor != "" {
		for _, v := range voices {
			if v.MatchesLocale(lang) && strings.Contains(v.Name, vendor) {
				return v, true
			}
		}
	}
	for _, v := range voices {
		if v.MatchesLocale(lang) {
			return v, true
		}
	}
	return voices[0], true
}

// FindVoice looks a voice up by exact name.
func FindVoice(voices []domain.Voice, name string) (domain.Voice, bool) {
	for _, v := range voices {
		if v.Name == name {
			return v, true
		}
	}
	return domain.Voice{}, false
}
