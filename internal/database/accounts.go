package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"passvault/internal/models"
)

type CreateAccountParams struct {
	UserID   int64
	Site     string
	Username string
	Password string
	Image    string
}

// UpdateAccountParams replaces the text fields. A nil Image keeps the stored one.
type UpdateAccountParams struct {
	ID       int64
	UserID   int64
	Site     string
	Username string
	Password string
	Image    *string
}

const accountColumns = `id, user_id, site, username, password, image, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Site, &a.Username, &a.Password, &a.Image, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, site, username, password, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	account, err := scanAccount(q.db.QueryRow(ctx, query, arg.UserID, arg.Site, arg.Username, arg.Password, arg.Image))
	if err != nil {
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").With("user_id", arg.UserID).Wrap(err)
	}
	return account, nil
}

func (q *Queries) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`

	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").With("user_id", userID).Wrap(err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}

	return accounts, nil
}

// GetAccount returns nil, nil when no account with that id belongs to the user.
func (q *Queries) GetAccount(ctx context.Context, id, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`

	account, err := scanAccount(q.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").With("account_id", id).Wrap(err)
	}
	return account, nil
}

// DeleteAccount removes the account and returns its image URL. found is false when
// nothing matched.
func (q *Queries) DeleteAccount(ctx context.Context, id, userID int64) (image string, found bool, err error) {
	query := `DELETE FROM accounts WHERE id = $1 AND user_id = $2 RETURNING image`

	if err := q.db.QueryRow(ctx, query, id, userID).Scan(&image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, oops.Code("ACCOUNT_DELETE_FAILED").With("account_id", id).Wrap(err)
	}
	return image, true, nil
}

// UpdateAccount applies arg and returns the image URL that was stored before, so the
// caller can discard it when it was replaced.
func (s *Store) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (oldImage string, found bool, err error) {
	err = s.ExecTx(ctx, func(q *Queries) error {
		row := q.db.QueryRow(ctx, `SELECT image FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`, arg.ID, arg.UserID)
		if err := row.Scan(&oldImage); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return oops.Code("ACCOUNT_GET_FAILED").With("account_id", arg.ID).Wrap(err)
		}
		found = true

		image := oldImage
		if arg.Image != nil {
			image = *arg.Image
		}

		query := `
			UPDATE accounts
			SET site = $1, username = $2, password = $3, image = $4, updated_at = now()
			WHERE id = $5 AND user_id = $6`
		if _, err := q.db.Exec(ctx, query, arg.Site, arg.Username, arg.Password, image, arg.ID, arg.UserID); err != nil {
			return oops.Code("ACCOUNT_UPDATE_FAILED").With("account_id", arg.ID).Wrap(err)
		}
		return nil
	})
	return oldImage, found, err
}
