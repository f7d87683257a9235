package moderation

import "log/slog"

type Sanitized struct {
	Text     string
	Lang     string
	Censored []string
}

// Sanitizer runs every outgoing text through the optional moderator and tags its language.
type Sanitizer struct {
	moderator *Moderator
	log       *slog.Logger
}

// NewSanitizer accepts a nil moderator, in which case text is only tagged.
func NewSanitizer(moderator *Moderator, log *slog.Logger) *Sanitizer {
	return &Sanitizer{moderator: moderator, log: log}
}

func (s *Sanitizer) Sanitize(text string) Sanitized {
	result := Sanitized{Text: text, Lang: DetectLanguage(text)}
	if s == nil || s.moderator == nil {
		return result
	}
	result.Text, result.Censored = s.moderator.Censor(text)
	if len(result.Censored) > 0 {
		s.log.Debug("Censored message", "words", len(result.Censored), "lang", result.Lang)
	}
	return result
}
