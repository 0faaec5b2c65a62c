package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MathiAviles/abogapp/internal/model"
)

// ReviewRepo stores client ratings of completed meetings.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Create inserts rv.  A second review for the same meeting yields
// ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (meeting_id, lawyer_id, client_id, rating, comment) VALUES (?,?,?,?,?)",
		rv.MeetingID, rv.LawyerID, rv.ClientID, rv.Rating, rv.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return fmt.Errorf("create review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ReviewSummary aggregates a lawyer's reviews.
type ReviewSummary struct {
	Average float64        `json:"average"`
	Count   int            `json:"count"`
	Recent  []model.Review `json:"recent"`
}

// Summary returns the lifetime average and count plus the latest reviews.
func (r *ReviewRepo) Summary(ctx context.Context, lawyerID uint64, recent int) (ReviewSummary, error) {
	var (
		s   ReviewSummary
		avg sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE lawyer_id=?", lawyerID).Scan(&avg, &s.Count)
	if err != nil {
		return s, fmt.Errorf("review totals: %w", err)
	}
	s.Average = avg.Float64
	s.Recent, err = r.page(ctx, lawyerID, recent, 0)
	return s, err
}

// List returns one page of a lawyer's reviews, newest first, together with
// the lawyer's total review count.  page is 1-based.
func (r *ReviewRepo) List(ctx context.Context, lawyerID uint64, page, perPage int) ([]model.Review, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE lawyer_id=?", lawyerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	items, err := r.page(ctx, lawyerID, perPage, (page-1)*perPage)
	return items, total, err
}

func (r *ReviewRepo) page(ctx context.Context, lawyerID uint64, limit, offset int) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, meeting_id, lawyer_id, client_id, rating, COALESCE(comment, ''), created_at
		 FROM reviews WHERE lawyer_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		lawyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()
	out := make([]model.Review, 0, limit)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.MeetingID, &rv.LawyerID, &rv.ClientID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
