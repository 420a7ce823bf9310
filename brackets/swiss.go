package brackets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/championship/models"
)

// swissSearchBudget limits backtracking steps per pairing attempt. Exhausting it is
// reported as infeasibility rather than hanging a request.
const swissSearchBudget = 200000

// PairHistory is the set of pairs that already met in the tournament.
type PairHistory struct {
	pairs map[[2]int]struct{}
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// NewPairHistory collects every completed two-player match.
func NewPairHistory(matches []models.Match) PairHistory {
	h := PairHistory{pairs: make(map[[2]int]struct{})}
	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.IsBye || m.Player1ID == nil || m.Player2ID == nil {
			continue
		}
		h.Add(*m.Player1ID, *m.Player2ID)
	}
	return h
}

func (h *PairHistory) Add(a, b int) {
	if h.pairs == nil {
		h.pairs = make(map[[2]int]struct{})
	}
	h.pairs[pairKey(a, b)] = struct{}{}
}

func (h PairHistory) Has(a, b int) bool {
	_, ok := h.pairs[pairKey(a, b)]
	return ok
}

func (h PairHistory) Len() int { return len(h.pairs) }

type swissPlayer struct {
	id      int
	rank    int
	points  float64
	rating  int
	byes    int
	balance int // белые минус чёрные
	last    models.Color
}

type swissPair struct {
	hi, lo swissPlayer // hi выше в таблице
}

// SwissGenerator pairs an active field by score groups with floaters, no repeats and
// colour balancing.
type SwissGenerator struct {
	budget int
}

func NewSwissGenerator() RoundGenerator {
	return &SwissGenerator{budget: swissSearchBudget}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

func (g *SwissGenerator) Generate(ctx context.Context, params GenerateRoundParams) ([]Pairing, error) {
	players := make([]swissPlayer, 0, len(params.Standings))
	expected := make([]int, 0, len(params.Standings))
	for _, s := range params.Standings {
		if !s.Active {
			continue
		}
		players = append(players, swissPlayer{
			id:      s.ParticipantID,
			rank:    s.Rank,
			points:  s.Points,
			rating:  s.Rating,
			byes:    s.Byes,
			balance: s.ColorBalance(),
			last:    s.LastColor,
		})
		expected = append(expected, s.ParticipantID)
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: %d active participants", ErrPairingInfeasible, len(players))
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].rank < players[j].rank })

	pairs, bye, err := g.pairField(ctx, players, params.History)
	if err != nil {
		return nil, fmt.Errorf("round %d: %w", params.Round.Number, err)
	}

	pairings := make([]Pairing, 0, len(pairs)+1)
	for _, p := range pairs {
		pairings = append(pairings, colorPair(p, params.Round.Number))
	}
	if bye != nil {
		pairings = append(pairings, Pairing{White: bye.id})
	}
	if err := VerifyCoverage(expected, pairings); err != nil {
		return nil, err
	}
	return pairings, nil
}

// pairField removes a bye recipient when the whole field is odd, then pairs the rest.
func (g *SwissGenerator) pairField(ctx context.Context, players []swissPlayer, hist PairHistory) ([]swissPair, *swissPlayer, error) {
	if len(players)%2 == 0 {
		pairs, err := g.pairGroups(players, hist)
		return pairs, nil, err
	}

	for _, cand := range byeCandidates(players) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rest := make([]swissPlayer, 0, len(players)-1)
		for _, p := range players {
			if p.id != cand.id {
				rest = append(rest, p)
			}
		}
		pairs, err := g.pairGroups(rest, hist)
		if err == nil {
			c := cand
			return pairs, &c, nil
		}
		if !isInfeasible(err) {
			return nil, nil, err
		}
	}
	return nil, nil, fmt.Errorf("%w: no bye recipient leaves a pairable field", ErrPairingInfeasible)
}

// byeCandidates orders the field by bye priority: fewest byes, lowest rating, lowest
// place, then id.
func byeCandidates(players []swissPlayer) []swissPlayer {
	c := make([]swissPlayer, len(players))
	copy(c, players)
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if a.byes != b.byes {
			return a.byes < b.byes
		}
		if a.rating != b.rating {
			return a.rating < b.rating
		}
		if a.rank != b.rank {
			return a.rank > b.rank
		}
		return a.id < b.id
	})
	return c
}

func isInfeasible(err error) bool {
	return errors.Is(err, ErrPairingInfeasible)
}

// pairGroups pairs an even field top-down by score group. An odd group floats its
// lowest pairable member down; a group that cannot be paired is merged into the next
// one. If the bottom group fails, the whole field is paired across groups.
func (g *SwissGenerator) pairGroups(players []swissPlayer, hist PairHistory) ([]swissPair, error) {
	if len(players)%2 != 0 {
		return nil, fmt.Errorf("%w: %d players", ErrImbalancedGroup, len(players))
	}

	groups := scoreGroups(players)
	var (
		result []swissPair
		carry  []swissPlayer
	)
	for gi, group := range groups {
		pool := append(append([]swissPlayer(nil), carry...), group...)
		carry = nil
		last := gi == len(groups)-1

		if last {
			pairs, err := g.matchAll(pool, hist)
			if err == nil {
				return append(result, pairs...), nil
			}
			if !isInfeasible(err) {
				return nil, err
			}
			break
		}

		if len(pool)%2 == 1 {
			floated := false
			for idx := len(pool) - 1; idx >= 0; idx-- {
				rest := make([]swissPlayer, 0, len(pool)-1)
				rest = append(rest, pool[:idx]...)
				rest = append(rest, pool[idx+1:]...)
				pairs, err := g.matchAll(rest, hist)
				if err != nil {
					if !isInfeasible(err) {
						return nil, err
					}
					continue
				}
				result = append(result, pairs...)
				carry = []swissPlayer{pool[idx]}
				floated = true
				break
			}
			if !floated {
				carry = pool
			}
			continue
		}

		pairs, err := g.matchAll(pool, hist)
		if err != nil {
			if !isInfeasible(err) {
				return nil, err
			}
			carry = pool
			continue
		}
		result = append(result, pairs...)
	}

	// межгрупповой запасной вариант по всему полю
	pairs, err := g.matchAll(players, hist)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func scoreGroups(players []swissPlayer) [][]swissPlayer {
	sorted := make([]swissPlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].points != sorted[j].points {
			return sorted[i].points > sorted[j].points
		}
		return sorted[i].rank < sorted[j].rank
	})

	var groups [][]swissPlayer
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].points == sorted[i].points {
			j++
		}
		groups = append(groups, sorted[i:j])
		i = j
	}
	return groups
}

// matchAll perfectly matches pool without repeats, preferring adjacent partners.
func (g *SwissGenerator) matchAll(pool []swissPlayer, hist PairHistory) ([]swissPair, error) {
	if len(pool)%2 != 0 {
		return nil, fmt.Errorf("%w: %d players", ErrImbalancedGroup, len(pool))
	}
	if len(pool) == 0 {
		return nil, nil
	}

	used := make([]bool, len(pool))
	pairs := make([]swissPair, 0, len(pool)/2)
	steps := g.budget
	if steps <= 0 {
		steps = swissSearchBudget
	}

	var solve func() bool
	solve = func() bool {
		first := -1
		for i := range pool {
			if !used[i] {
				first = i
				break
			}
		}
		if first < 0 {
			return true
		}
		used[first] = true
		for j := first + 1; j < len(pool); j++ {
			if used[j] || hist.Has(pool[first].id, pool[j].id) {
				continue
			}
			steps--
			if steps < 0 {
				break
			}
			used[j] = true
			pairs = append(pairs, swissPair{hi: pool[first], lo: pool[j]})
			if solve() {
				return true
			}
			pairs = pairs[:len(pairs)-1]
			used[j] = false
		}
		used[first] = false
		return false
	}

	if !solve() {
		if steps < 0 {
			return nil, fmt.Errorf("%w: search budget exhausted for %d players", ErrPairingInfeasible, len(pool))
		}
		return nil, fmt.Errorf("%w: %d players", ErrPairingInfeasible, len(pool))
	}
	return pairs, nil
}

// colorPair decides who plays white: the player owing more whites, then the one who
// had black last, otherwise the higher place on odd rounds and the lower on even ones.
func colorPair(p swissPair, round int) Pairing {
	hi, lo := p.hi, p.lo
	if lo.rank < hi.rank {
		hi, lo = lo, hi
	}
	hiWhite := round%2 == 1
	switch {
	case hi.balance < lo.balance:
		hiWhite = true
	case hi.balance > lo.balance:
		hiWhite = false
	case hi.last == models.ColorBlack && lo.last != models.ColorBlack:
		hiWhite = true
	case lo.last == models.ColorBlack && hi.last != models.ColorBlack:
		hiWhite = false
	}
	if hiWhite {
		b := lo.id
		return Pairing{White: hi.id, Black: &b}
	}
	b := hi.id
	return Pairing{White: lo.id, Black: &b}
}
