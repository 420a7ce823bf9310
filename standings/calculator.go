// Package standings derives the tournament table from completed matches.
package standings

import (
	"encoding/binary"
	"sort"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/Dosada05/championship/models"
)

// LotKey is the deterministic last-resort tiebreak for a participant. Lower wins.
func LotKey(tournamentID, participantID int) uint64 {
	sum := blake2b.Sum256([]byte(strconv.Itoa(tournamentID) + ":" + strconv.Itoa(participantID)))
	return binary.BigEndian.Uint64(sum[:8])
}

type entry struct {
	models.Standing
	lot uint64
	// очки, набранные против каждого соперника (для личных встреч)
	vs map[int]float64
}

// Calculate recomputes the standings. Only completed matches count; the output order
// and values depend on nothing but the inputs.
func Calculate(tournamentID int, participants []models.Participant, matches []models.Match, policy models.ScoringPolicy) []models.Standing {
	entries := make(map[int]*entry, len(participants))
	for _, p := range participants {
		entries[p.ID] = &entry{
			Standing: models.Standing{
				ParticipantID: p.ID,
				DisplayName:   p.DisplayName,
				Rating:        p.Rating,
				Active:        p.IsActive(),
				Opponents:     []int{},
			},
			lot: LotKey(tournamentID, p.ID),
			vs:  make(map[int]float64),
		}
	}

	played := completedInOrder(matches)
	for _, m := range played {
		applyMatch(entries, m, policy)
	}

	// второй проход: коэффициенты зависят от итоговых очков соперников
	for _, e := range entries {
		for _, opp := range e.Opponents {
			if o, ok := entries[opp]; ok {
				e.Buchholz += o.Points
			}
		}
		for _, opp := range sortedKeys(e.vs) {
			o, ok := entries[opp]
			if !ok {
				continue
			}
			e.SonnebornBerger += sonnebornWeight(e.vs[opp], policy) * o.Points
		}
	}

	list := make([]*entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ParticipantID < list[j].ParticipantID })

	applyHeadToHead(list)

	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })

	out := make([]models.Standing, len(list))
	for i, e := range list {
		e.Rank = i + 1
		out[i] = e.Standing
	}
	return out
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func completedInOrder(matches []models.Match) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted && m.Result != nil && !m.IsPlaceholder {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].OrderInRound < out[j].OrderInRound
	})
	return out
}

func applyMatch(entries map[int]*entry, m models.Match, policy models.ScoringPolicy) {
	if *m.Result == models.ResultBye {
		if m.Player1ID == nil {
			return
		}
		e, ok := entries[*m.Player1ID]
		if !ok {
			return
		}
		e.Points += policy.ByePoints
		e.Byes++
		if policy.ByeCountsAsPlayed {
			e.MatchesPlayed++
		}
		return
	}

	if m.Player1ID == nil || m.Player2ID == nil {
		return
	}
	white, wok := entries[*m.Player1ID]
	black, bok := entries[*m.Player2ID]
	if !wok || !bok {
		return
	}

	wp, bp := pointsFor(m, policy)
	white.Points += wp
	black.Points += bp
	white.vs[black.ParticipantID] += wp
	black.vs[white.ParticipantID] += bp
	white.Opponents = append(white.Opponents, black.ParticipantID)
	black.Opponents = append(black.Opponents, white.ParticipantID)
	white.MatchesPlayed++
	black.MatchesPlayed++

	switch *m.Result {
	case models.ResultWin, models.ResultForfeitSingle:
		if m.WinnerID != nil && *m.WinnerID == white.ParticipantID {
			white.Wins++
			black.Losses++
		} else {
			black.Wins++
			white.Losses++
		}
	case models.ResultDraw:
		white.Draws++
		black.Draws++
	case models.ResultForfeitDouble:
		white.Losses++
		black.Losses++
	}

	// цвета учитываем только для сыгранных партий
	if *m.Result == models.ResultWin || *m.Result == models.ResultDraw {
		white.Whites++
		white.LastColor = models.ColorWhite
		black.Blacks++
		black.LastColor = models.ColorBlack
	}
}

// pointsFor returns the points earned by player 1 and player 2.
func pointsFor(m models.Match, policy models.ScoringPolicy) (float64, float64) {
	p1Won := m.WinnerID != nil && *m.WinnerID == *m.Player1ID
	switch *m.Result {
	case models.ResultWin:
		if p1Won {
			return policy.WinPoints, policy.LossPoints
		}
		return policy.LossPoints, policy.WinPoints
	case models.ResultForfeitSingle:
		if p1Won {
			return policy.ForfeitWinPoints, policy.ForfeitLossPoints
		}
		return policy.ForfeitLossPoints, policy.ForfeitWinPoints
	case models.ResultDraw:
		return policy.DrawPoints, policy.DrawPoints
	case models.ResultForfeitDouble:
		return policy.DoubleForfeitPoints, policy.DoubleForfeitPoints
	case models.ResultBye:
		return policy.ByePoints, 0
	}
	panic("standings: unhandled result kind " + string(*m.Result))
}

// sonnebornWeight: full opponent score for each win, half for each draw.
func sonnebornWeight(scored float64, policy models.ScoringPolicy) float64 {
	if policy.WinPoints <= 0 {
		return 0
	}
	return scored / policy.WinPoints
}

// applyHeadToHead fills HeadToHead for participants tied on points and both
// coefficients: points scored in games among the tied subset only.
func applyHeadToHead(list []*entry) {
	type tieKey struct {
		active               bool
		points, buchholz, sb float64
	}
	groups := make(map[tieKey][]*entry)
	for _, e := range list {
		k := tieKey{e.Active, e.Points, e.Buchholz, e.SonnebornBerger}
		groups[k] = append(groups[k], e)
	}
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, e := range group {
			var h float64
			for _, o := range group {
				if o != e {
					h += e.vs[o.ParticipantID]
				}
			}
			e.HeadToHead = h
		}
	}
}

func less(a, b *entry) bool {
	if a.Active != b.Active {
		return a.Active
	}
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.Buchholz != b.Buchholz {
		return a.Buchholz > b.Buchholz
	}
	if a.SonnebornBerger != b.SonnebornBerger {
		return a.SonnebornBerger > b.SonnebornBerger
	}
	if a.HeadToHead != b.HeadToHead {
		return a.HeadToHead > b.HeadToHead
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if a.lot != b.lot {
		return a.lot < b.lot
	}
	return a.ParticipantID < b.ParticipantID
}
