package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/repository"
)

// ProfileService resolves who a quiz history belongs to.
//
// Local profiles are named freely and selected by id; anyone can pick one.
// Token-bound profiles exist only for verified bearer subjects and cannot be
// listed, selected or deleted through the local calls.
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, username string) (*models.Profile, error)
	SelectProfile(ctx context.Context, id int64) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
	// ProfileForSubject maps a verified token subject to its profile.
	ProfileForSubject(ctx context.Context, subject string) (*models.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list profiles: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return profiles, nil
}

// CreateProfile returns the local profile named username, creating it on
// first use. Surrounding whitespace is not part of the name.
func (s *profileService) CreateProfile(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(username)
	if name == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}

	profile, err := s.profiles.Upsert(ctx, name)
	if err != nil {
		log.Error("failed to create profile %q: %v", name, err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("profile %q resolved to id=%d", name, profile.ID)
	return profile, nil
}

func (s *profileService) SelectProfile(ctx context.Context, id int64) (*models.Profile, error) {
	return s.local(ctx, id)
}

func (s *profileService) DeleteProfile(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if _, err := s.local(ctx, id); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("profile", id)
		}
		log.Error("failed to delete profile %d: %v", id, err)
		return errors.NewInternalError(err)
	}

	log.Info("profile %d deleted with its history", id)
	return nil
}

func (s *profileService) ProfileForSubject(ctx context.Context, subject string) (*models.Profile, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, errors.NewUnauthorizedError("token has no subject")
	}

	profile, err := s.profiles.UpsertExternal(ctx, subject)
	if err != nil {
		logger.FromContext(ctx).Error("failed to resolve token subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return profile, nil
}

// local loads profile id and refuses token-bound ones.
func (s *profileService) local(ctx context.Context, id int64) (*models.Profile, error) {
	profile, err := s.profiles.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("profile", id)
		}
		logger.FromContext(ctx).Error("failed to get profile %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	if profile.TokenBound() {
		logger.FromContext(ctx).Warn("refused local access to token-bound profile %d", id)
		return nil, errors.NewForbiddenError("profile is bound to a bearer token")
	}
	return profile, nil
}
