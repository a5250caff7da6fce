package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateName = errors.New("participant name already exists")
)

// ParticipantRepository is the ordered participant roster. The position of a
// participant in List is its index.
type ParticipantRepository interface {
	List(ctx context.Context) ([]bracket.Participant, error)
	Count(ctx context.Context) (int, error)
	GetByIndex(ctx context.Context, index int) (*bracket.Participant, error)
	GetByUID(ctx context.Context, uid uuid.UUID) (*bracket.Participant, error)
	FindByName(ctx context.Context, name string) (*bracket.Participant, error)
	Add(ctx context.Context, name string) (*bracket.Participant, error)
	AddMany(ctx context.Context, names []string) ([]bracket.Participant, error)
	Remove(ctx context.Context, uid uuid.UUID) error
}

var (
	_ ParticipantRepository = (*ParticipantStore)(nil)
	_ ParticipantRepository = (*MemoryParticipantStore)(nil)
)

type ParticipantStore struct {
	db *sqlx.DB
}

func NewParticipantStore(db *sqlx.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) List(ctx context.Context) ([]bracket.Participant, error) {
	participants := []bracket.Participant{}
	err := s.db.SelectContext(ctx, &participants, "SELECT * FROM participants ORDER BY id ASC")
	return participants, err
}

func (s *ParticipantStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM participants")
	return count, err
}

func (s *ParticipantStore) GetByIndex(ctx context.Context, index int) (*bracket.Participant, error) {
	if index < 0 {
		return nil, fmt.Errorf("participant at index %d: %w", index, ErrNotFound)
	}
	var p bracket.Participant
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM participants ORDER BY id ASC LIMIT 1 OFFSET ?"), index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant at index %d: %w", index, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantStore) GetByUID(ctx context.Context, uid uuid.UUID) (*bracket.Participant, error) {
	var p bracket.Participant
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM participants WHERE uid = ?"), uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantStore) FindByName(ctx context.Context, name string) (*bracket.Participant, error) {
	return findByName(ctx, s.db, name)
}

func (s *ParticipantStore) Add(ctx context.Context, name string) (*bracket.Participant, error) {
	added, err := s.AddMany(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

// AddMany inserts all names in one transaction. A name that collides with an
// existing participant, or with an earlier name in the batch, aborts the
// whole batch.
func (s *ParticipantStore) AddMany(ctx context.Context, names []string) ([]bracket.Participant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	added := make([]bracket.Participant, 0, len(names))
	for _, name := range names {
		if _, err := findByName(ctx, tx, name); err == nil {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateName)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		p := bracket.Participant{UID: uuid.New(), Name: name}
		query, args, err := tx.BindNamed(`INSERT INTO participants (uid, name) VALUES (:uid, :name) RETURNING id`, p)
		if err != nil {
			return nil, err
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&p.ID); err != nil {
			return nil, fmt.Errorf("failed to insert participant %q: %w", name, err)
		}
		added = append(added, p)
	}

	return added, tx.Commit()
}

func (s *ParticipantStore) Remove(ctx context.Context, uid uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM participants WHERE uid = ?"), uid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("participant %s: %w", uid, ErrNotFound)
	}
	return nil
}

func findByName(ctx context.Context, exec sqlx.ExtContext, name string) (*bracket.Participant, error) {
	var p bracket.Participant
	err := sqlx.GetContext(ctx, exec, &p, exec.Rebind("SELECT * FROM participants WHERE LOWER(name) = LOWER(?)"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
