package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/vocabquiz/internal/db"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/repository"
)

var profileColumns = []string{"id", "username", "external_subject", "created_at"}

var localProfile = squirrel.Eq{"external_subject": nil}

type profileRepository struct {
	db *db.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(database *db.DB) repository.ProfileRepository {
	return &profileRepository{db: database}
}

func (r *profileRepository) Upsert(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting profile for username: %s", username)

	query, args, err := r.db.Builder().
		Insert("profiles").
		Columns("username", "created_at").
		Values(username, time.Now().UTC()).
		Suffix("ON CONFLICT (username) WHERE external_subject IS NULL DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert profile: %v", err)
		return nil, err
	}

	p, err := r.getBy(ctx, squirrel.And{squirrel.Eq{"username": username}, localProfile})
	if err != nil {
		log.Error("failed to read upserted profile: %v", err)
		return nil, err
	}
	log.Debug("profile upserted: id=%d", p.ID)
	return p, nil
}

// UpsertExternal returns the profile bound to a token subject, creating it on
// first use. The subject doubles as the display name.
func (r *profileRepository) UpsertExternal(ctx context.Context, subject string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting token-bound profile for subject: %s", subject)

	query, args, err := r.db.Builder().
		Insert("profiles").
		Columns("username", "external_subject", "created_at").
		Values(subject, subject, time.Now().UTC()).
		Suffix("ON CONFLICT (external_subject) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert token-bound profile: %v", err)
		return nil, err
	}

	p, err := r.getBy(ctx, squirrel.Eq{"external_subject": subject})
	if err != nil {
		log.Error("failed to read token-bound profile: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	query, args, err := r.db.Builder().
		Select(profileColumns...).
		From("profiles").
		Where(localProfile).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	profiles := []models.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}

	log.Debug("found %d profiles", len(profiles))
	return profiles, nil
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	p, err := r.getBy(ctx, squirrel.Eq{"id": id})
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug("profile not found: id=%d", id)
		return nil, err
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile and related data: id=%d", id)

	b := r.db.Builder()
	return r.db.Tx(ctx, func(tx *sqlx.Tx) error {
		// Results and statistics go with the profile through ON DELETE CASCADE;
		// the session row is keyed by string and has to be removed by hand.
		query, args, err := b.Delete("quiz_sessions").Where(squirrel.Eq{"session_key": models.SessionKey(id)}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to delete quiz session for profile %d: %v", id, err)
			return err
		}

		query, args, err = b.Delete("profiles").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to delete profile %d: %v", id, err)
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return repository.ErrNotFound
		}

		log.Debug("profile %d deleted with cascading data", id)
		return nil
	})
}

func (r *profileRepository) getBy(ctx context.Context, where squirrel.Sqlizer) (*models.Profile, error) {
	query, args, err := r.db.Builder().Select(profileColumns...).From("profiles").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
