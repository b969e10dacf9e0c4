package pairing

type pairKey struct {
	a, b string
}

func keyOf(a, b string) pairKey {
	if a < b {
		return pairKey{a: a, b: b}
	}
	return pairKey{a: b, b: a}
}

// PairCounts records how many historical tables each unordered pair of
// players has shared.
type PairCounts map[pairKey]int

// CountPairs builds PairCounts from history. Tables of any size are accepted.
func CountPairs(history []HistoricalTable) PairCounts {
	counts := make(PairCounts)
	for _, t := range history {
		ids := t.PlayerIDs
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				counts[keyOf(ids[i], ids[j])]++
			}
		}
	}
	return counts
}

// Get returns the number of tables a and b have shared.
func (c PairCounts) Get(a, b string) int {
	return c[keyOf(a, b)]
}

// RepeatedPairs counts the pairs seated together in round that already shared
// a table in history.
func RepeatedPairs(round Round, history []HistoricalTable) int {
	counts := CountPairs(history)
	repeats := 0
	for _, t := range round.Tables {
		ids := t.PlayerIDs
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if counts.Get(ids[i], ids[j]) > 0 {
					repeats++
				}
			}
		}
	}
	return repeats
}

// AsHistory converts a generated round into history entries for the next one.
func (r Round) AsHistory() []HistoricalTable {
	out := make([]HistoricalTable, len(r.Tables))
	for i, t := range r.Tables {
		out[i] = HistoricalTable{PlayerIDs: append([]string(nil), t.PlayerIDs...)}
	}
	return out
}
