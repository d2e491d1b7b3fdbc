package database

import (
	"context"

	"github.com/samber/oops"

	"passvault/internal/models"
)

type CreateItemParams struct {
	UserID      int64
	Name        string
	Description *string
}

type UpdateItemParams struct {
	ID          int64
	UserID      int64
	Name        string
	Description *string
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (int64, error) {
	query := `INSERT INTO items (user_id, name, description) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := q.db.QueryRow(ctx, query, arg.UserID, arg.Name, arg.Description).Scan(&id); err != nil {
		return 0, oops.Code("ITEM_CREATE_FAILED").With("user_id", arg.UserID).Wrap(err)
	}
	return id, nil
}

func (q *Queries) ListItems(ctx context.Context, userID int64) ([]models.Item, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM items
		WHERE user_id = $1
		ORDER BY id`

	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, oops.Code("ITEM_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, oops.Code("ITEM_LIST_FAILED").With("user_id", userID).Wrap(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ITEM_LIST_FAILED").With("user_id", userID).Wrap(err)
	}

	return items, nil
}

// UpdateItem reports false when no item with that id belongs to the user.
func (q *Queries) UpdateItem(ctx context.Context, arg UpdateItemParams) (bool, error) {
	query := `
		UPDATE items
		SET name = $1, description = $2, updated_at = now()
		WHERE id = $3 AND user_id = $4`

	tag, err := q.db.Exec(ctx, query, arg.Name, arg.Description, arg.ID, arg.UserID)
	if err != nil {
		return false, oops.Code("ITEM_UPDATE_FAILED").With("item_id", arg.ID).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) DeleteItem(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, oops.Code("ITEM_DELETE_FAILED").With("item_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}
