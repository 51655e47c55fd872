package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/internal/profiles/domain"
	"rental_portal_backend/platform/apperr"
)

const profileNotFoundMessage = "profile not found"

const profileColumns = `id, oxy_user_id, profile_type, is_active, personal_profile, agency_profile, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL. The personal and
// agency sub-documents are stored as JSONB columns.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profiles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a new profile. A user may hold at most one profile per type;
// duplicates surface as a conflict.
func (r *Repo) Create(ctx context.Context, params CreateParams) (domain.Profile, error) {
	personal, err := marshalSubDocument(params.PersonalProfile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("encode personal profile: %w", err)
	}
	agency, err := marshalSubDocument(params.AgencyProfile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("encode agency profile: %w", err)
	}

	query := `
		INSERT INTO profiles (oxy_user_id, profile_type, personal_profile, agency_profile)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, params.OxyUserID, params.ProfileType, personal, agency)
	profile, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Profile{}, apperr.Conflict("profile of this type already exists")
		}
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

// GetByID retrieves a profile by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return domain.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}

	return profile, nil
}

// GetByIDForUser retrieves a profile by ID, scoped to its owner.
func (r *Repo) GetByIDForUser(ctx context.Context, id uuid.UUID, oxyUserID string) (domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND oxy_user_id = $2`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id, oxyUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return domain.Profile{}, fmt.Errorf("get profile for user: %w", err)
	}

	return profile, nil
}

// GetActiveByUser retrieves the single active profile of a user.
func (r *Repo) GetActiveByUser(ctx context.Context, oxyUserID string) (domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE oxy_user_id = $1 AND is_active = true`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, oxyUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, apperr.NotFound("no active profile")
		}
		return domain.Profile{}, fmt.Errorf("get active profile: %w", err)
	}

	return profile, nil
}

// ListByUser retrieves all profiles of a user ordered by creation time.
func (r *Repo) ListByUser(ctx context.Context, oxyUserID string) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE oxy_user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, oxyUserID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListRoommateCandidates retrieves active personal profiles that opted into
// roommate matching, excluding the caller's own profile.
func (r *Repo) ListRoommateCandidates(ctx context.Context, excludeOxyUserID string) ([]domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE profile_type = 'personal'
			AND is_active = true
			AND oxy_user_id <> $1
			AND (personal_profile->'roommate'->>'enabled')::boolean = true
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, excludeOxyUserID)
	if err != nil {
		return nil, fmt.Errorf("list roommate candidates: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListStaleTrustScores retrieves active profiles whose trust score has not
// been recalculated since olderThan, including profiles never scored at all.
func (r *Repo) ListStaleTrustScores(ctx context.Context, olderThan time.Time, limit int) ([]domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_active = true
			AND (
				personal_profile->'trustScore'->>'lastCalculated' IS NULL
				OR (personal_profile->'trustScore'->>'lastCalculated')::timestamptz < $1
			)
		ORDER BY updated_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale trust scores: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Activate deactivates all of the user's profiles and activates the target
// within one transaction. Aborting leaves the previous active profile intact.
func (r *Repo) Activate(ctx context.Context, oxyUserID string, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin activate profile: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE profiles SET is_active = false, updated_at = now() WHERE oxy_user_id = $1 AND is_active = true`,
		oxyUserID,
	); err != nil {
		return fmt.Errorf("deactivate profiles: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE profiles SET is_active = true, updated_at = now() WHERE id = $1 AND oxy_user_id = $2`,
		id, oxyUserID,
	)
	if err != nil {
		return fmt.Errorf("activate profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMessage)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activate profile: %w", err)
	}

	return nil
}

// UpdatePersonal replaces the personal sub-document of a profile.
func (r *Repo) UpdatePersonal(ctx context.Context, id uuid.UUID, personal *domain.PersonalProfile) error {
	data, err := marshalSubDocument(personal)
	if err != nil {
		return fmt.Errorf("encode personal profile: %w", err)
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE profiles SET personal_profile = $2, updated_at = now() WHERE id = $1`,
		id, data,
	)
	if err != nil {
		return fmt.Errorf("update personal profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMessage)
	}

	return nil
}

// UpdateAgency replaces the agency sub-document of a profile.
func (r *Repo) UpdateAgency(ctx context.Context, id uuid.UUID, agency *domain.AgencyProfile) error {
	data, err := marshalSubDocument(agency)
	if err != nil {
		return fmt.Errorf("encode agency profile: %w", err)
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE profiles SET agency_profile = $2, updated_at = now() WHERE id = $1`,
		id, data,
	)
	if err != nil {
		return fmt.Errorf("update agency profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMessage)
	}

	return nil
}

// Delete removes a profile owned by the user.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID, oxyUserID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM profiles WHERE id = $1 AND oxy_user_id = $2`,
		id, oxyUserID,
	)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMessage)
	}

	return nil
}

func marshalSubDocument(doc interface{}) ([]byte, error) {
	switch v := doc.(type) {
	case *domain.PersonalProfile:
		if v == nil {
			return nil, nil
		}
	case *domain.AgencyProfile:
		if v == nil {
			return nil, nil
		}
	}
	return json.Marshal(doc)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	var p domain.Profile
	var personal, agency []byte

	if err := row.Scan(
		&p.ID, &p.OxyUserID, &p.ProfileType, &p.IsActive,
		&personal, &agency, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Profile{}, err
	}

	if len(personal) > 0 {
		p.PersonalProfile = &domain.PersonalProfile{}
		if err := json.Unmarshal(personal, p.PersonalProfile); err != nil {
			return domain.Profile{}, fmt.Errorf("decode personal profile: %w", err)
		}
	}
	if len(agency) > 0 {
		p.AgencyProfile = &domain.AgencyProfile{}
		if err := json.Unmarshal(agency, p.AgencyProfile); err != nil {
			return domain.Profile{}, fmt.Errorf("decode agency profile: %w", err)
		}
	}

	return p, nil
}

func scanProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	var results []domain.Profile

	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		results = append(results, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return results, nil
}
