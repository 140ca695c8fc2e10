package volley

import "strings"

// Summary is the per-team aggregate shown on the team page.
type Summary struct {
	Played      int
	Wins        int
	Losses      int
	Draws       int
	Unknown     int
	SetsFor     int
	SetsAgainst int
	Streak      []Outcome
}

// Played keeps the matches that have a result, preserving order.
func Played(matches []Match) []Match {
	played := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.HasResult() {
			played = append(played, m)
		}
	}
	return played
}

// Summarize aggregates matches ordered most recent first. Outcomes already
// set on the matches are reused; otherwise rule classifies them.
func Summarize(matches []Match, rule Rule) Summary {
	s := Summary{Played: len(matches)}
	for _, m := range matches {
		o := m.Outcome
		if o == Pending {
			o = rule.Classify(m)
		}
		switch o {
		case Win:
			s.Wins++
		case Loss:
			s.Losses++
		case Draw:
			s.Draws++
		case Unknown:
			s.Unknown++
		}
		if won, lost, ok := rule.Sets(m); ok {
			s.SetsFor += won
			s.SetsAgainst += lost
		}
	}
	s.Streak = Streak(matches, rule, StreakLength)
	return s
}

// Streak returns the outcomes of the n most recent result-bearing matches,
// most recent first. matches must be ordered by date descending.
func Streak(matches []Match, rule Rule, n int) []Outcome {
	streak := make([]Outcome, 0, n)
	for _, m := range matches {
		if len(streak) == n {
			break
		}
		o := m.Outcome
		if o == Pending {
			o = rule.Classify(m)
		}
		if o == Pending {
			continue
		}
		streak = append(streak, o)
	}
	return streak
}

// StreakString joins a streak into a compact marker string, e.g. "WWLW?".
func StreakString(streak []Outcome) string {
	var b strings.Builder
	for _, o := range streak {
		b.WriteString(string(o))
	}
	return b.String()
}
