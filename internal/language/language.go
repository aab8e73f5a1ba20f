package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Target describes the dub language as both a canonical BCP-47 tag and a
// human-readable name used inside translation and speech prompts.
type Target struct {
	Tag  language.Tag
	Name string
}

// Resolve parses a BCP-47 tag such as "pt-BR" or "de" into a Target.
// Unparseable values are rejected so a typo fails at config time rather
// than producing a dub in the wrong language.
func Resolve(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, fmt.Errorf("language: empty tag")
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("language: parse %q: %w", raw, err)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		name = tag.String()
	}
	return Target{Tag: tag, Name: name}, nil
}

// String returns the canonical tag form.
func (t Target) String() string {
	return t.Tag.String()
}
