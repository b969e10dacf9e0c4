// Package pairing partitions a tournament roster into 4-player tables.
//
// Each table is built around an anchor: the unseated player with the highest
// historical pair load. The remaining three seats are filled by an exhaustive
// search over the unseated pool that minimises repeated pairings and rewards a
// balanced team mix. The search only runs against the shrinking pool, so the
// total cost is the sum of C(remaining, 3) over all tables of a round.
package pairing

import (
	"cmp"
	"fmt"
	"slices"
)

// TableSize is the number of players seated at every table.
const TableSize = 4

// Team balance constants. A perfect two-versus-two mix is rewarded; otherwise
// the largest single group is penalised, harder once it exceeds two members.
const (
	perfectMixReward = 0.5
	stackedPenalty   = 0.5
	spreadPenalty    = 0.2
)

// Player is a roster entry. An empty TeamID means the player has no team.
type Player struct {
	ID     string `json:"id" koanf:"id"`
	Name   string `json:"name" koanf:"name"`
	TeamID string `json:"teamId,omitempty" koanf:"team_id"`
}

// HistoricalTable lists the players that previously sat together.
type HistoricalTable struct {
	PlayerIDs []string `json:"playerIds" koanf:"player_ids"`
}

// GeneratedTable is one table of a generated round.
type GeneratedTable struct {
	TableIndex  int            `json:"tableIndex"`
	PlayerIDs   []string       `json:"playerIds"`
	TeamSummary map[string]int `json:"teamSummary"`
	PairScore   float64        `json:"pairScore"`
}

// Round is the output of GenerateRound.
type Round struct {
	Tables      []GeneratedTable `json:"tables"`
	Explanation []string         `json:"explanation"`
}

// GenerateRound seats every player exactly once. Tables are returned in the
// order they were built and the result is deterministic for a given roster
// order and history.
func GenerateRound(players []Player, history []HistoricalTable) (Round, error) {
	if len(players)%TableSize != 0 {
		return Round{}, fmt.Errorf("%w: got %d players", ErrInvalidRosterSize, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.ID]; ok {
			return Round{}, fmt.Errorf("%w: %q", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	counts := CountPairs(history)
	remaining := slices.Clone(players)
	tables := make([]GeneratedTable, 0, len(players)/TableSize)

	for len(remaining) > 0 {
		orderByPairLoad(remaining, counts)
		anchor := remaining[0]
		remaining = remaining[1:]

		picked, score, ok := bestCompletion(anchor, remaining, counts)
		if !ok {
			return Round{}, fmt.Errorf("%w: %d players left for anchor %q", ErrUnsatisfiableAssignment, len(remaining), anchor.ID)
		}

		members := make([]Player, 0, TableSize)
		members = append(members, anchor)
		for _, idx := range picked {
			members = append(members, remaining[idx])
		}
		tables = append(tables, newTable(len(tables)+1, members, score))
		remaining = without(remaining, picked)
	}

	return Round{Tables: tables, Explanation: explain(tables)}, nil
}

// orderByPairLoad sorts players by pair load, highest first. The sort is
// stable so equal loads keep their current relative order.
func orderByPairLoad(players []Player, counts PairCounts) {
	load := make(map[string]int, len(players))
	for _, p := range players {
		sum := 0
		for _, other := range players {
			if other.ID == p.ID {
				continue
			}
			sum += counts.Get(p.ID, other.ID)
		}
		load[p.ID] = sum
	}
	slices.SortStableFunc(players, func(a, b Player) int {
		return cmp.Compare(load[b.ID], load[a.ID])
	})
}

// bestCompletion returns the indexes into pool of the three players that give
// the anchor the lowest candidate score. The first combination wins ties.
func bestCompletion(anchor Player, pool []Player, counts PairCounts) ([]int, float64, bool) {
	var (
		best      []int
		bestScore float64
	)
	group := make([]Player, TableSize)
	group[0] = anchor
	eachCombination(len(pool), TableSize-1, func(idx []int) {
		for i, p := range idx {
			group[i+1] = pool[p]
		}
		score := candidateScore(group, counts)
		if best == nil || score < bestScore {
			best = slices.Clone(idx)
			bestScore = score
		}
	})
	return best, bestScore, best != nil
}

// candidateScore sums repeat pairings inside group and applies the team
// balance adjustment. Lower is better.
func candidateScore(group []Player, counts PairCounts) float64 {
	score := 0.0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			score += float64(counts.Get(group[i].ID, group[j].ID))
		}
	}
	return score + teamAdjustment(group)
}

type groupKey struct {
	id   string
	solo bool
}

func teamAdjustment(group []Player) float64 {
	sizes := make(map[groupKey]int, len(group))
	for _, p := range group {
		if p.TeamID == "" {
			sizes[groupKey{id: p.ID, solo: true}]++
			continue
		}
		sizes[groupKey{id: p.TeamID}]++
	}
	counts := make([]int, 0, len(sizes))
	for _, n := range sizes {
		counts = append(counts, n)
	}
	slices.SortFunc(counts, func(a, b int) int { return cmp.Compare(b, a) })

	if len(counts) == 2 && counts[0] == 2 && counts[1] == 2 {
		return -perfectMixReward
	}
	largest := float64(counts[0])
	if counts[0] > 2 {
		return largest * stackedPenalty
	}
	return largest * spreadPenalty
}

// eachCombination calls visit with every k-sized, strictly increasing index
// set drawn from [0, n), in lexicographic order. The slice passed to visit is
// reused between calls.
func eachCombination(n, k int, visit func([]int)) {
	if k > n {
		return
	}
	idx := make([]int, k)
	var choose func(start, depth int)
	choose = func(start, depth int) {
		if depth == k {
			visit(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			choose(i+1, depth+1)
		}
	}
	choose(0, 0)
}

func without(pool []Player, picked []int) []Player {
	out := make([]Player, 0, len(pool)-len(picked))
	for i, p := range pool {
		if !slices.Contains(picked, i) {
			out = append(out, p)
		}
	}
	return out
}

func newTable(index int, members []Player, score float64) GeneratedTable {
	ids := make([]string, len(members))
	summary := make(map[string]int, len(members))
	for i, p := range members {
		ids[i] = p.ID
		key := "player-" + p.ID
		if p.TeamID != "" {
			key = "team-" + p.TeamID
		}
		summary[key]++
	}
	return GeneratedTable{
		TableIndex:  index,
		PlayerIDs:   ids,
		TeamSummary: summary,
		PairScore:   score,
	}
}

func explain(tables []GeneratedTable) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		repeats := "0"
		if t.PairScore >= 0 {
			repeats = fmt.Sprintf("%.2f", t.PairScore)
		}
		out[i] = fmt.Sprintf("Table %d minimised repeat pair score %s", t.TableIndex, repeats)
	}
	return out
}
