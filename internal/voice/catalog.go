// ABOUTME: Static voice and language catalog for speech synthesis.
// ABOUTME: Loaded once from an embedded TOML table; never computed at runtime.

package voice

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML []byte

// DefaultVoice is used when nothing better is known about a persona.
const DefaultVoice = "Zephyr"

// AutoLanguage is the sentinel for "follow the global language setting".
const AutoLanguage = "auto"

// Profile describes a single prebuilt voice.
type Profile struct {
	Gender      string `toml:"gender"` // "male", "female"
	Style       string `toml:"style"`
	Personality string `toml:"personality"`
}

type catalogData struct {
	Voices    map[string]Profile `toml:"voices"`
	Languages map[string]string  `toml:"languages"`
}

var catalog catalogData

func init() {
	if err := toml.Unmarshal(catalogTOML, &catalog); err != nil {
		panic(fmt.Sprintf("voice: embedded catalog is invalid: %v", err))
	}
	if _, ok := catalog.Voices[DefaultVoice]; !ok {
		panic("voice: embedded catalog is missing the default voice")
	}
}

// Lookup returns the profile for a voice identifier.
func Lookup(name string) (Profile, bool) {
	p, ok := catalog.Voices[name]
	return p, ok
}

// Names returns all voice identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog.Voices))
	for name := range catalog.Voices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByGender returns the voice identifiers matching the given gender, sorted.
// An empty or unknown gender returns every voice.
func ByGender(gender string) []string {
	if gender != "male" && gender != "female" {
		return Names()
	}
	var names []string
	for name, p := range catalog.Voices {
		if p.Gender == gender {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Languages returns the display-name -> locale-code table.
func Languages() map[string]string {
	out := make(map[string]string, len(catalog.Languages))
	for k, v := range catalog.Languages {
		out[k] = v
	}
	return out
}

// LanguageNames returns the language display names in sorted order, with
// "English (US)" first when present (it is the default).
func LanguageNames() []string {
	names := make([]string, 0, len(catalog.Languages))
	for name := range catalog.Languages {
		if name == "English (US)" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, ok := catalog.Languages["English (US)"]; ok {
		names = append([]string{"English (US)"}, names...)
	}
	return names
}

// LocaleFor resolves a language display name to its locale code.
func LocaleFor(displayName string) (string, bool) {
	code, ok := catalog.Languages[displayName]
	return code, ok
}
