package record

// Outcome classifies a single update against a report's winner, per the
// attribution rules: the initial state (ResponsiblePlayer == -1) is never a
// win, so it scores a draw in a drawn game and a loss otherwise.
type Outcome struct {
	Draw bool
	Win  bool
}

// Attribute computes which counter a visited update should increment, given
// the game's winner. The initial state (ResponsiblePlayer == -1) never wins,
// even when winner is also -1 (a draw): spec.md §4.5 carves this out
// explicitly so a drawn game's initial state records a draw, not a win.
func Attribute(winner int, u Update) Outcome {
	return Outcome{
		Draw: winner == DrawWinner,
		Win:  u.ResponsiblePlayer != InitialResponsiblePlayer && winner == u.ResponsiblePlayer,
	}
}

// Apply returns the single-visit delta record implied by this outcome: the
// delta is accumulated into a cache entry's pending side, never written
// directly to a StateRecord.
func (o Outcome) Apply() StateRecord {
	switch {
	case o.Win:
		return StateRecord{Wins: 1}
	case o.Draw:
		return StateRecord{Draws: 1}
	default:
		return StateRecord{Losses: 1}
	}
}

// DedupUpdates returns the report's updates with later occurrences of an
// already-seen serialized key dropped, preserving first-seen order. A report
// absorbed through this is equivalent, for every distinct key, to absorbing
// that key exactly once per report (spec's dedup law).
func DedupUpdates(updates []Update) []Update {
	seen := make(map[string]struct{}, len(updates))
	out := make([]Update, 0, len(updates))
	for _, u := range updates {
		key := string(u.Serialized)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}
