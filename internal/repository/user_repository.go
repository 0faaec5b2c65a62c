package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MathiAviles/abogapp/internal/lifecycle"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/utils"
)

// UserRepo is the user directory backed by the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `id, email, password_hash, role, nombres, apellidos, especialidad, about_me, titles,
	profile_picture_url, consultation_price, is_active, email_verified, kyc_status, kyc_notes,
	is_approved, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Nombres, &u.Apellidos,
		&u.Especialidad, &u.AboutMe, &u.Titles, &u.ProfilePictureURL, &u.ConsultationPrice,
		&u.IsActive, &u.EmailVerified, &u.KYCStatus, &u.KYCNotes, &u.IsApproved,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// NewUser holds the registration input.
type NewUser struct {
	Email        string
	Password     string
	Role         string
	Nombres      string
	Apellidos    string
	Especialidad string
}

// Create inserts a user and returns its ID.  Email delivery is not part of
// this service, so addresses are recorded as verified and approval is
// computed from the remaining facts.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return 0, err
	}
	var especialidad *string
	if in.Role == model.RoleLawyer && in.Especialidad != "" {
		especialidad = &in.Especialidad
	}
	approved := lifecycle.ComputeApproval(lifecycle.ApprovalFacts{
		Role:          in.Role,
		EmailVerified: true,
		KYCStatus:     model.KYCNotSubmitted,
	})
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, nombres, apellidos, especialidad,
			email_verified, kyc_status, is_approved) VALUES (?,?,?,?,?,?,TRUE,?,?)`,
		email, hash, in.Role, in.Nombres, in.Apellidos, especialidad, model.KYCNotSubmitted, approved)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetMany loads several users at once, keyed by id.  Missing ids are
// absent from the map.
func (r *UserRepo) GetMany(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT " + userColumns + " FROM users WHERE id IN (?" + strings.Repeat(",?", len(ids)-1) + ")"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// ProfileUpdate carries the lawyer-editable profile fields.  Nil fields
// are left untouched.
type ProfileUpdate struct {
	AboutMe           *string
	Titles            *string
	ConsultationPrice *decimal.Decimal
}

// UpdateProfile applies a lawyer's profile edit.  Meetings already booked
// keep the price frozen on their own row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) error {
	var price any
	if p.ConsultationPrice != nil {
		price = p.ConsultationPrice.StringFixed(2)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET about_me = COALESCE(?, about_me), titles = COALESCE(?, titles),
			consultation_price = COALESCE(?, consultation_price) WHERE id = ? AND role = ?`,
		p.AboutMe, p.Titles, price, id, model.RoleLawyer)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	// Zero rows also means "nothing changed"; tell that apart from a
	// caller who is not a lawyer.
	if n, _ := res.RowsAffected(); n == 0 {
		u, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Role != model.RoleLawyer {
			return ErrForbidden
		}
	}
	return nil
}

// SetKYC stores a KYC decision and recomputes is_approved in the same
// transaction, so the derived flag never disagrees with its inputs.
func (r *UserRepo) SetKYC(ctx context.Context, id uint64, status string, notes *string) (model.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	u, err := scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.KYCStatus = status
	u.KYCNotes = notes
	u.IsApproved = lifecycle.ComputeApproval(lifecycle.ApprovalFacts{
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		KYCStatus:     status,
	})
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET kyc_status=?, kyc_notes=?, is_approved=? WHERE id=?",
		u.KYCStatus, u.KYCNotes, u.IsApproved, id); err != nil {
		return model.User{}, fmt.Errorf("update kyc: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	committed = true
	return u, nil
}

// SetActive toggles users.is_active.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	// Zero rows also means "nothing changed"; tell that apart from a
	// caller who is not a lawyer.
	if n, _ := res.RowsAffected(); n == 0 {
		u, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Role != model.RoleLawyer {
			return ErrForbidden
		}
	}
	return nil
}

// ListLawyersByKYC returns lawyers in the given KYC state, oldest first.
func (r *UserRepo) ListLawyersByKYC(ctx context.Context, status string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND kyc_status=? ORDER BY created_at",
		model.RoleLawyer, status)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// SearchLawyers lists approved, active lawyers whose specialty contains
// especialidad, case-insensitively.
func (r *UserRepo) SearchLawyers(ctx context.Context, especialidad string) ([]model.User, error) {
	like := "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.TrimSpace(especialidad)) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users WHERE role=? AND is_approved AND is_active
		 AND LOWER(especialidad) LIKE LOWER(?) ORDER BY apellidos, nombres`,
		model.RoleLawyer, like)
	if err != nil {
		return nil, fmt.Errorf("search lawyers: %w", err)
	}
	return collectUsers(rows)
}
