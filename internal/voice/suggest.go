// ABOUTME: Best-effort voice suggestion from a persona description.
// ABOUTME: Keyword counting only; the output is an advisory default, not a contract.

package voice

import (
	"strings"
)

// Suggestion is an advisory voice/style default for a persona.
type Suggestion struct {
	Voice        string
	Style        string
	Reason       string
	Gender       string // detected gender, "neutral" when undecidable
	Alternatives []Alternative
}

// Alternative is a runner-up suggestion the user can pick instead.
type Alternative struct {
	Voice  string
	Style  string
	Reason string
}

var maleWords = []string{
	"he", "him", "his", "himself", "man", "male", "father", "dad", "brother",
	"son", "king", "lord", "sir", "gentleman", "boy", "mr", "uncle", "grandfather",
}

var femaleWords = []string{
	"she", "her", "hers", "herself", "woman", "female", "mother", "mom", "sister",
	"daughter", "queen", "lady", "madam", "girl", "mrs", "ms", "aunt", "grandmother",
}

// DetectGender counts gendered words in a persona description and returns
// "male", "female", or "neutral" on a tie or no signal.
func DetectGender(description string) string {
	words := tokenize(description)

	male, female := 0, 0
	for _, w := range words {
		if contains(maleWords, w) {
			male++
		}
		if contains(femaleWords, w) {
			female++
		}
	}

	switch {
	case male > female:
		return "male"
	case female > male:
		return "female"
	default:
		return "neutral"
	}
}

// styleRule maps description keywords to a voice and speaking style.
type styleRule struct {
	keywords []string
	voice    string
	style    string
}

// Rules are checked in order; the first hit wins.
var styleRules = []styleRule{
	{[]string{"wise", "professor", "scholar", "ancient"}, "Gacrux", "Speak in a wise and measured tone"},
	{[]string{"young", "energetic", "excited", "enthusiastic"}, "Fenrir", "Speak with excitement and energy"},
	{[]string{"calm", "peaceful", "gentle", "soft"}, "Achernar", "Speak in a calm and gentle manner"},
	{[]string{"authoritative", "leader", "commander", "strong"}, "Kore", "Speak with authority and confidence"},
	{[]string{"mysterious", "dark", "gothic", "spooky"}, "Enceladus", "Speak in a mysterious whisper"},
	{[]string{"friendly", "warm", "kind", "cheerful"}, "Achird", "Speak cheerfully and warmly"},
}

// Suggest proposes a voice and speaking style for a persona description.
// The primary pick comes from the keyword table; alternatives are voices
// matching the detected gender.
func Suggest(description string) Suggestion {
	lower := strings.ToLower(description)
	gender := DetectGender(description)

	sugg := Suggestion{
		Voice:  DefaultVoice,
		Style:  "Speak naturally",
		Reason: "no stylistic keywords matched",
		Gender: gender,
	}

	for _, rule := range styleRules {
		var matched []string
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			sugg.Voice = rule.voice
			sugg.Style = rule.style
			sugg.Reason = "matched keywords: " + strings.Join(matched, ", ")
			break
		}
	}

	for _, name := range ByGender(gender) {
		if name == sugg.Voice {
			continue
		}
		p, _ := Lookup(name)
		sugg.Alternatives = append(sugg.Alternatives, Alternative{
			Voice:  name,
			Style:  "Speak in a " + strings.ToLower(p.Style) + " tone",
			Reason: p.Personality,
		})
		if len(sugg.Alternatives) == 3 {
			break
		}
	}

	return sugg
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
}

func contains(list []string, w string) bool {
	for _, item := range list {
		if item == w {
			return true
		}
	}
	return false
}
