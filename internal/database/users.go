package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"passvault/internal/models"
)

const userColumns = `id, firstname, middlename, lastname, email, password_hash, profile_picture, token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.Token,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns nil, nil when no user has that email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(q.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("USER_GET_FAILED").Wrap(err)
	}
	return user, nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("USER_GET_FAILED").With("user_id", id).Wrap(err)
	}
	return user, nil
}

// CreateUser inserts u. A duplicate email yields models.ErrEmailTaken.
func (q *Queries) CreateUser(ctx context.Context, u models.NewUser) (*models.User, error) {
	query := `
		INSERT INTO users (firstname, middlename, lastname, email, password_hash, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	user, err := scanUser(q.db.QueryRow(ctx, query,
		u.FirstName,
		u.MiddleName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.ProfilePicture,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrEmailTaken
		}
		return nil, oops.Code("USER_CREATE_FAILED").Wrap(err)
	}
	return user, nil
}

// SetUserToken stores token as the user's only valid session. nil clears it.
func (q *Queries) SetUserToken(ctx context.Context, id int64, token *string) (bool, error) {
	query := `UPDATE users SET token = $1, updated_at = now() WHERE id = $2`

	tag, err := q.db.Exec(ctx, query, token, id)
	if err != nil {
		return false, oops.Code("USER_TOKEN_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetUserPassword replaces the hash and the session token together.
func (q *Queries) SetUserPassword(ctx context.Context, id int64, hash string, token *string) (bool, error) {
	query := `UPDATE users SET password_hash = $1, token = $2, updated_at = now() WHERE id = $3`

	tag, err := q.db.Exec(ctx, query, hash, token, id)
	if err != nil {
		return false, oops.Code("USER_PASSWORD_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) UpdateUserProfile(ctx context.Context, id int64, p models.ProfileUpdate) (bool, error) {
	query := `
		UPDATE users
		SET firstname = $1, middlename = $2, lastname = $3, email = $4, updated_at = now()
		WHERE id = $5`

	tag, err := q.db.Exec(ctx, query, p.FirstName, p.MiddleName, p.LastName, p.Email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return false, models.ErrEmailTaken
		}
		return false, oops.Code("USER_PROFILE_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// SwapProfilePicture sets a new picture URL and returns the one it replaced.
// found is false when the user does not exist.
func (s *Store) SwapProfilePicture(ctx context.Context, id int64, url string) (old string, found bool, err error) {
	err = s.ExecTx(ctx, func(q *Queries) error {
		row := q.db.QueryRow(ctx, `SELECT profile_picture FROM users WHERE id = $1 FOR UPDATE`, id)
		if err := row.Scan(&old); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return oops.Code("USER_GET_FAILED").With("user_id", id).Wrap(err)
		}
		found = true

		_, err := q.db.Exec(ctx, `UPDATE users SET profile_picture = $1, updated_at = now() WHERE id = $2`, url, id)
		if err != nil {
			return oops.Code("USER_PICTURE_UPDATE_FAILED").With("user_id", id).Wrap(err)
		}
		return nil
	})
	return old, found, err
}
