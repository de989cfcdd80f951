// Package record defines the core data model shared by the store, the
// cache, the driver, and the weight calculator: per-state outcome counters
// and the reports a completed game produces.
package record

// StateRecord is the triple of non-negative visit-outcome counters for one
// (responsible player, position) pair.
type StateRecord struct {
	Draws  int64
	Losses int64
	Wins   int64
}

// Visits is the derived, never-stored sum of the three counters.
func (r StateRecord) Visits() int64 {
	return r.Draws + r.Losses + r.Wins
}

// Add returns the pointwise sum of r and other.
func (r StateRecord) Add(other StateRecord) StateRecord {
	return StateRecord{
		Draws:  r.Draws + other.Draws,
		Losses: r.Losses + other.Losses,
		Wins:   r.Wins + other.Wins,
	}
}

// InitialResponsiblePlayer marks the initial state of a game report: no
// player produced it.
const InitialResponsiblePlayer = -1

// DrawWinner is the sentinel winner value denoting the game ended in a draw.
const DrawWinner = -1

// Update is one state visited during a game: its serialized form and the
// index of the player whose move produced it (-1 for the initial state).
type Update struct {
	Serialized        []byte
	ResponsiblePlayer int
}

// Report is the full transcript of one resolved game (including one declared
// a draw at the max-turns bound): every state visited in order, the player
// count, and the winner (-1 for a draw).
type Report struct {
	Updates         []Update
	NumberOfPlayers int
	Winner          int
}

// IncrementTask is a batched mutation sent from the cache to the store: add
// these non-negative addends to whatever record currently exists (or create
// one) at Serialized.
type IncrementTask struct {
	Serialized []byte
	Draws      int64
	Losses     int64
	Wins       int64
}
