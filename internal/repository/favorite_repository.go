package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FavoriteRepo stores the lawyers each user has saved.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// Add saves lawyerID for userID.  Saving the same lawyer twice yields
// ErrConflict.
func (r *FavoriteRepo) Add(ctx context.Context, userID, lawyerID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorites (user_id, lawyer_id) VALUES (?,?)", userID, lawyerID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove deletes the pair if present.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, lawyerID uint64) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id=? AND lawyer_id=?", userID, lawyerID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// LawyerIDs returns the saved lawyers of userID in the order they were
// saved.
func (r *FavoriteRepo) LawyerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT lawyer_id FROM favorites WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	out := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
