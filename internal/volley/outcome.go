package volley

import (
	"strconv"
	"strings"
)

// Outcome is the classification of a single match result.
type Outcome string

const (
	Win     Outcome = "W"
	Loss    Outcome = "L"
	Draw    Outcome = "D"
	Unknown Outcome = "?"
	Pending Outcome = "" // no result recorded yet
)

// Class is the CSS/template class for the outcome.
func (o Outcome) Class() string {
	switch o {
	case Win:
		return "victoria"
	case Loss:
		return "derrota"
	case Draw:
		return "empat"
	case Unknown:
		return "desconegut"
	default:
		return "pendent"
	}
}

// Variant identifies one of the supported store schema shapes.
type Variant string

const (
	// VariantClassic has no seasons and a free-text result where the team's
	// sets are listed first ("3-1" is always a win).
	VariantClassic Variant = "classic"
	// VariantSets is season-scoped with integer set counts per side.
	VariantSets Variant = "sets"
	// VariantHomeAway is season-scoped with a free-text "home-away" result.
	VariantHomeAway Variant = "homeaway"
)

// HasSeasons reports whether the variant groups matches into seasons.
func (v Variant) HasSeasons() bool {
	return v == VariantSets || v == VariantHomeAway
}

// Rule interprets a match result from the team's point of view.
type Rule interface {
	Classify(m Match) Outcome
	// Sets returns the sets won and lost by the team, when they can be read.
	Sets(m Match) (won, lost int, ok bool)
}

// RuleFor returns the result rule used by a schema variant.
func RuleFor(v Variant) Rule {
	switch v {
	case VariantSets:
		return SetCountRule{}
	case VariantHomeAway:
		return HomeAwayRule{}
	default:
		return LeadingThreeRule{}
	}
}

// SetCountRule reads integer set counts. Equal counts are a draw.
type SetCountRule struct{}

func (SetCountRule) Classify(m Match) Outcome {
	won, lost, ok := SetCountRule{}.Sets(m)
	switch {
	case !ok:
		return Pending
	case won > lost:
		return Win
	case won < lost:
		return Loss
	default:
		return Draw
	}
}

func (SetCountRule) Sets(m Match) (int, int, bool) {
	if m.SetsFor == nil || m.SetsAgainst == nil {
		return 0, 0, false
	}
	return *m.SetsFor, *m.SetsAgainst, true
}

// LeadingThreeRule is the best-of-five text convention: the result is a win
// iff it starts with "3-" or "3 -". Any other recorded result is a loss.
type LeadingThreeRule struct{}

func (LeadingThreeRule) Classify(m Match) Outcome {
	text, ok := resultText(m)
	if !ok {
		return Pending
	}
	if strings.HasPrefix(text, "3-") || strings.HasPrefix(text, "3 -") {
		return Win
	}
	return Loss
}

func (LeadingThreeRule) Sets(m Match) (int, int, bool) {
	text, ok := resultText(m)
	if !ok {
		return 0, 0, false
	}
	return ParseScore(text)
}

// HomeAwayRule reads "A-B" as home sets first. Unparseable text is Unknown.
type HomeAwayRule struct{}

func (HomeAwayRule) Classify(m Match) Outcome {
	if _, ok := resultText(m); !ok {
		return Pending
	}
	won, lost, ok := HomeAwayRule{}.Sets(m)
	if !ok {
		return Unknown
	}
	if won > lost {
		return Win
	}
	return Loss
}

func (HomeAwayRule) Sets(m Match) (int, int, bool) {
	text, ok := resultText(m)
	if !ok {
		return 0, 0, false
	}
	home, away, ok := ParseScore(text)
	if !ok {
		return 0, 0, false
	}
	if m.Home {
		return home, away, true
	}
	return away, home, true
}

// ParseScore splits "A-B" or "A - B" into its two set counts.
func ParseScore(text string) (int, int, bool) {
	left, right, found := strings.Cut(strings.TrimSpace(text), "-")
	if !found {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || a < 0 {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil || b < 0 {
		return 0, 0, false
	}
	return a, b, true
}

func resultText(m Match) (string, bool) {
	if m.ResultText == nil {
		return "", false
	}
	text := strings.TrimSpace(*m.ResultText)
	return text, text != ""
}

// Classify sets the Outcome of every match using rule.
func Classify(matches []Match, rule Rule) {
	for i := range matches {
		matches[i].Outcome = rule.Classify(matches[i])
	}
}
