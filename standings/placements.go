package standings

import (
	"github.com/Dosada05/championship/models"
)

// FinalPlacements derives podium positions from the knockout rounds. Without a third
// place match both semifinal losers share third place. The map is empty until the final
// is decided.
func FinalPlacements(rounds []models.Round, matches []models.Match) map[int]int {
	kindOf := make(map[int]models.RoundKind, len(rounds))
	for _, r := range rounds {
		kindOf[r.Number] = r.Kind
	}

	var final, third *models.Match
	var semis []models.Match
	hasThird := false
	for i := range matches {
		m := &matches[i]
		switch kindOf[m.RoundNumber] {
		case models.RoundKindFinal:
			final = m
		case models.RoundKindThirdPlace:
			hasThird = true
			third = m
		case models.RoundKindSemifinal:
			semis = append(semis, *m)
		}
	}

	out := make(map[int]int)
	if final == nil || final.Status != models.MatchStatusCompleted || final.WinnerID == nil {
		return out
	}
	out[*final.WinnerID] = 1
	if loser, ok := final.Loser(); ok {
		out[loser] = 2
	}

	if hasThird {
		if third != nil && third.Status == models.MatchStatusCompleted && third.WinnerID != nil {
			out[*third.WinnerID] = 3
			if loser, ok := third.Loser(); ok {
				out[loser] = 4
			}
		}
		return out
	}
	for _, m := range semis {
		if loser, ok := m.Loser(); ok && m.Status == models.MatchStatusCompleted {
			out[loser] = 3
		}
	}
	return out
}

// ApplyPlacements sets FinalPosition on the standings in place.
func ApplyPlacements(table []models.Standing, placements map[int]int) {
	for i := range table {
		if pos, ok := placements[table[i].ParticipantID]; ok {
			p := pos
			table[i].FinalPosition = &p
		}
	}
}

// PlacementsFromTable uses the table order as the final ranking, for tournaments
// without a knockout phase.
func PlacementsFromTable(table []models.Standing) map[int]int {
	out := make(map[int]int, len(table))
	for _, s := range table {
		out[s.ParticipantID] = s.Rank
	}
	return out
}
