package repositories

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/championship/models"
)

var errMemoryExecutor = errors.New("memory store transaction does not execute SQL")

// memoryExecutor marks calls made inside a memory transaction. The store lock is
// already held by InTx, so repositories must not take it again.
type memoryExecutor struct{}

func (memoryExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errMemoryExecutor
}

func (memoryExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errMemoryExecutor
}

func (memoryExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

// memoryDB keeps every table in maps behind one mutex. Transactions hold the mutex for
// their whole duration and restore a snapshot on error, so they are serialisable.
type memoryDB struct {
	mu           sync.Mutex
	seq          int
	tournaments  map[int]models.Tournament
	participants map[int]models.Participant
	rounds       map[int]models.Round
	matches      map[int]models.Match
	now          func() time.Time
}

// NewMemoryStore returns a Store backed by process memory, used when no database is
// configured and in tests.
func NewMemoryStore() *Store {
	db := &memoryDB{
		tournaments:  make(map[int]models.Tournament),
		participants: make(map[int]models.Participant),
		rounds:       make(map[int]models.Round),
		matches:      make(map[int]models.Match),
		now:          func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		Tournaments:  &memoryTournamentRepository{db: db},
		Rounds:       &memoryRoundRepository{db: db},
		Participants: &memoryParticipantRepository{db: db},
		Matches:      &memoryMatchRepository{db: db},
		Tx:           &memoryTransactor{db: db},
	}
}

func (db *memoryDB) with(exec SQLExecutor, fn func() error) error {
	if _, inTx := exec.(memoryExecutor); !inTx {
		db.mu.Lock()
		defer db.mu.Unlock()
	}
	return fn()
}

func (db *memoryDB) nextID() int {
	db.seq++
	return db.seq
}

type memoryTransactor struct {
	db *memoryDB
}

func (t *memoryTransactor) InTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()

	seq := db.seq
	tournaments := maps.Clone(db.tournaments)
	participants := maps.Clone(db.participants)
	rounds := maps.Clone(db.rounds)
	matches := maps.Clone(db.matches)
	restore := func() {
		db.seq = seq
		db.tournaments = tournaments
		db.participants = participants
		db.rounds = rounds
		db.matches = matches
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
		if txErr != nil {
			restore()
		}
	}()
	return fn(memoryExecutor{})
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMatch(m models.Match) models.Match {
	m.Player1ID = cloneInt(m.Player1ID)
	m.Player2ID = cloneInt(m.Player2ID)
	m.WinnerID = cloneInt(m.WinnerID)
	m.Deadline = cloneTime(m.Deadline)
	m.CompletedAt = cloneTime(m.CompletedAt)
	if m.Result != nil {
		r := *m.Result
		m.Result = &r
	}
	if m.Slot1 != nil {
		s := *m.Slot1
		m.Slot1 = &s
	}
	if m.Slot2 != nil {
		s := *m.Slot2
		m.Slot2 = &s
	}
	return m
}

func cloneRound(r models.Round) models.Round {
	r.DeterminedByRound = cloneInt(r.DeterminedByRound)
	r.DeclaredPairs = append([]models.DeclaredPair(nil), r.DeclaredPairs...)
	return r
}

func cloneTournament(t models.Tournament) models.Tournament {
	if t.Config.Scoring != nil {
		s := *t.Config.Scoring
		t.Config.Scoring = &s
	}
	t.Rounds = nil
	t.Participants = nil
	return t
}

type memoryTournamentRepository struct {
	db *memoryDB
}

func (r *memoryTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	return r.db.with(exec, func() error {
		for _, existing := range r.db.tournaments {
			if existing.Slug == t.Slug {
				return ErrTournamentSlugConflict
			}
		}
		now := r.db.now()
		t.ID = r.db.nextID()
		t.CreatedAt, t.UpdatedAt = now, now
		r.db.tournaments[t.ID] = cloneTournament(*t)
		return nil
	})
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	var out *models.Tournament
	err := r.db.with(exec, func() error {
		t, ok := r.db.tournaments[id]
		if !ok {
			return ErrTournamentNotFound
		}
		c := cloneTournament(t)
		out = &c
		return nil
	})
	return out, err
}

func (r *memoryTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	if _, err := models.ParseTournamentStatus(string(status)); err != nil {
		return err
	}
	return r.db.with(exec, func() error {
		t, ok := r.db.tournaments[id]
		if !ok {
			return ErrTournamentNotFound
		}
		t.Status = status
		t.UpdatedAt = r.db.now()
		r.db.tournaments[id] = t
		return nil
	})
}

func (r *memoryTournamentRepository) ListIDsByStatus(ctx context.Context, exec SQLExecutor, status models.TournamentStatus) ([]int, error) {
	ids := make([]int, 0)
	err := r.db.with(exec, func() error {
		for id, t := range r.db.tournaments {
			if t.Status == status {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Ints(ids)
	return ids, err
}

type memoryParticipantRepository struct {
	db *memoryDB
}

func (r *memoryParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	return r.db.with(exec, func() error {
		if _, ok := r.db.tournaments[p.TournamentID]; !ok {
			return ErrParticipantTournamentInvalid
		}
		for _, existing := range r.db.participants {
			if existing.TournamentID != p.TournamentID {
				continue
			}
			if existing.UserID == p.UserID {
				return ErrParticipantConflict
			}
			if existing.Seed == p.Seed {
				return ErrParticipantSeedConflict
			}
		}
		p.ID = r.db.nextID()
		p.CreatedAt = r.db.now()
		r.db.participants[p.ID] = *p
		return nil
	})
}

func (r *memoryParticipantRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Participant, error) {
	var out *models.Participant
	err := r.db.with(exec, func() error {
		p, ok := r.db.participants[id]
		if !ok {
			return ErrParticipantNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *memoryParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Participant, error) {
	out := make([]models.Participant, 0)
	err := r.db.with(exec, func() error {
		for _, p := range r.db.participants {
			if p.TournamentID == tournamentID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seed != out[j].Seed {
			return out[i].Seed < out[j].Seed
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *memoryParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus) error {
	if _, err := models.ParseParticipantStatus(string(status)); err != nil {
		return err
	}
	return r.db.with(exec, func() error {
		p, ok := r.db.participants[id]
		if !ok {
			return ErrParticipantNotFound
		}
		p.Status = status
		r.db.participants[id] = p
		return nil
	})
}

type memoryRoundRepository struct {
	db *memoryDB
}

func (r *memoryRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	return r.db.with(exec, func() error {
		for _, existing := range r.db.rounds {
			if existing.TournamentID == round.TournamentID && existing.Number == round.Number {
				return ErrRoundConflict
			}
		}
		round.ID = r.db.nextID()
		r.db.rounds[round.ID] = cloneRound(*round)
		return nil
	})
}

func (r *memoryRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	out := make([]models.Round, 0)
	err := r.db.with(exec, func() error {
		for _, round := range r.db.rounds {
			if round.TournamentID == tournamentID {
				out = append(out, cloneRound(round))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

// LockRound is satisfied by the transaction itself: InTx holds the store mutex.
func (r *memoryRoundRepository) LockRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) error {
	if _, inTx := exec.(memoryExecutor); !inTx {
		return errors.New("round lock requires a transaction")
	}
	return nil
}

type memoryMatchRepository struct {
	db *memoryDB
}

func (r *memoryMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if m.IsPlaceholder && (m.Player1ID != nil || m.Player2ID != nil) {
		return ErrMatchStateViolation
	}
	return r.db.with(exec, func() error {
		for _, existing := range r.db.matches {
			if existing.TournamentID == m.TournamentID && existing.RoundNumber == m.RoundNumber &&
				existing.OrderInRound == m.OrderInRound {
				return ErrMatchSlotConflict
			}
		}
		now := r.db.now()
		m.ID = r.db.nextID()
		m.CreatedAt, m.UpdatedAt = now, now
		r.db.matches[m.ID] = cloneMatch(*m)
		return nil
	})
}

func (r *memoryMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	var out *models.Match
	err := r.db.with(exec, func() error {
		m, ok := r.db.matches[id]
		if !ok {
			return ErrMatchNotFound
		}
		c := cloneMatch(m)
		out = &c
		return nil
	})
	return out, err
}

func (r *memoryMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]models.Match, error) {
	out := make([]models.Match, 0)
	err := r.db.with(exec, func() error {
		for _, m := range r.db.matches {
			if m.TournamentID != tournamentID {
				continue
			}
			if filter.Round != nil && m.RoundNumber != *filter.Round {
				continue
			}
			if filter.Status != nil && m.Status != *filter.Status {
				continue
			}
			out = append(out, cloneMatch(m))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].OrderInRound < out[j].OrderInRound
	})
	return out, err
}

func (r *memoryMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if m.IsPlaceholder && (m.Player1ID != nil || m.Player2ID != nil) {
		return ErrMatchStateViolation
	}
	return r.db.with(exec, func() error {
		existing, ok := r.db.matches[m.ID]
		if !ok {
			return ErrMatchNotFound
		}
		m.UpdatedAt = r.db.now()
		updated := cloneMatch(*m)
		// неизменяемые поля берём из хранилища
		updated.TournamentID = existing.TournamentID
		updated.RoundNumber = existing.RoundNumber
		updated.OrderInRound = existing.OrderInRound
		updated.ByeSlot = existing.ByeSlot
		updated.Slot1, updated.Slot2 = existing.Slot1, existing.Slot2
		updated.CreatedAt = existing.CreatedAt
		r.db.matches[m.ID] = updated
		return nil
	})
}

func (r *memoryMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	return r.db.with(exec, func() error {
		if _, ok := r.db.matches[id]; !ok {
			return ErrMatchNotFound
		}
		delete(r.db.matches, id)
		return nil
	})
}
