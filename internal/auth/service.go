package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
)

const (
	minPasswordLength = 6
	maxNameLength     = 64
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	repo      repository.BrawlerRepository
	passports *Passports
	logger    *slog.Logger
}

func NewService(repo repository.BrawlerRepository, passports *Passports) *Service {
	return &Service{
		repo:      repo,
		passports: passports,
		logger:    slog.Default().With("logger", "auth"),
	}
}

func (s *Service) Register(ctx context.Context, username, password, displayName string) (*Passport, error) {
	username = model.NormalizeUsername(username)
	displayName = strings.TrimSpace(displayName)

	if username == "" || utf8.RuneCountInString(username) > maxNameLength || strings.ContainsAny(username, " \t\n") {
		return nil, fmt.Errorf("%w: bad username", mission.ErrInvalidArgument)
	}

	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", mission.ErrInvalidArgument, minPasswordLength)
	}

	if displayName == "" {
		displayName = username
	}

	if err := checkDisplayName(displayName); err != nil {
		return nil, err
	}

	b := &model.Brawler{Username: username, DisplayName: displayName}

	if err := b.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("brawler registered", slog.String("username", b.Username), slog.Uint64("id", uint64(b.ID)))

	return s.passports.Issue(b)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Passport, error) {
	b, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !b.CheckPassword(password) {
		s.logger.Info("login failed", slog.String("username", model.NormalizeUsername(username)))

		return nil, ErrInvalidCredentials
	}

	return s.passports.Issue(b)
}

// Authenticate resolves a token to an existing brawler.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Brawler, error) {
	id, err := s.passports.Verify(token)
	if err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b == nil {
		return nil, ErrInvalidToken
	}

	return b, nil
}

func (s *Service) Me(ctx context.Context, id uint) (*model.Brawler, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b == nil {
		return nil, mission.ErrNotFound
	}

	return b, nil
}

func (s *Service) UpdateDisplayName(ctx context.Context, id uint, name string) (*model.Brawler, error) {
	name = strings.TrimSpace(name)

	if err := checkDisplayName(name); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDisplayName(ctx, id, name); err != nil {
		return nil, err
	}

	return s.Me(ctx, id)
}

func checkDisplayName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: display name must be 1 to %d characters", mission.ErrInvalidArgument, maxNameLength)
	}

	return nil
}
