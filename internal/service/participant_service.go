package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/AdamBeresnev/eworldcup/internal/utils"
	"github.com/google/uuid"
)

const maxNameLength = 50

type ParticipantService struct {
	repo   store.ParticipantRepository
	logger *slog.Logger
}

func NewParticipantService(repo store.ParticipantRepository, logger *slog.Logger) *ParticipantService {
	return &ParticipantService{repo: repo, logger: logger}
}

type ParticipantsOverview struct {
	Count        int                   `json:"count"`
	MaxRounds    *int                  `json:"maxRounds"`
	Participants []bracket.Participant `json:"participants"`
}

// List returns the roster. MaxRounds is nil while the roster cannot host a
// round robin.
func (s *ParticipantService) List(ctx context.Context) (*ParticipantsOverview, error) {
	participants, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	overview := &ParticipantsOverview{Count: len(participants), Participants: participants}
	if maxRounds, err := bracket.GetMaxRounds(len(participants)); err == nil {
		overview.MaxRounds = &maxRounds
	}
	return overview, nil
}

func (s *ParticipantService) Add(ctx context.Context, name string) (*bracket.Participant, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Add(ctx, name)
	if err != nil {
		return nil, mapParticipantError(err)
	}

	s.logger.Info("participant added", "name", p.Name, "uid", p.UID)
	return p, nil
}

func (s *ParticipantService) Remove(ctx context.Context, uid string) error {
	id, err := uuid.Parse(uid)
	if err != nil {
		return apperr.InvalidArgument("invalid participant id %q", uid)
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return mapParticipantError(err)
	}

	s.logger.Info("participant removed", "uid", id)
	return nil
}

// Import adds one participant per non-blank line of text. Either every name
// is added or none is.
func (s *ParticipantService) Import(ctx context.Context, text string) ([]bracket.Participant, error) {
	lines := utils.NonEmptyLines(text)
	if len(lines) == 0 {
		return nil, apperr.InvalidArgument("no participant names given")
	}

	names := make([]string, 0, len(lines))
	for _, line := range lines {
		name, err := validateName(line)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	added, err := s.repo.AddMany(ctx, names)
	if err != nil {
		return nil, mapParticipantError(err)
	}

	s.logger.Info("participants imported", "count", len(added))
	return added, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.InvalidArgument("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apperr.InvalidArgument("name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func mapParticipantError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicateName):
		return apperr.Wrap(apperr.KindInvalidOperation, err, "participant name already exists")
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, "participant not found")
	}
	return err
}
