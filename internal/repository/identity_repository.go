package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rongwang/nailpos-server/internal/models"
)

// Identity repository methods
func (r *PostgresRepository) GetIdentityUserByID(ctx context.Context, id string) (*models.IdentityUser, error) {
	var user models.IdentityUser
	err := r.db.GetContext(ctx, &user, `SELECT * FROM identity_users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetIdentityUserByEmail(ctx context.Context, email string) (*models.IdentityUser, error) {
	var user models.IdentityUser
	err := r.db.GetContext(ctx, &user, `SELECT * FROM identity_users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) CreateIdentityUser(ctx context.Context, user *models.IdentityUser) error {
	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identity_users
			(id, email, user_name, password_hash, email_confirmed, access_failed_count, lockout_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.UserName, user.PasswordHash, user.EmailConfirmed,
		user.AccessFailedCount, user.LockoutEnd, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) UpdateLoginState(ctx context.Context, userID string, failedCount int, lockoutEnd *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identity_users SET access_failed_count = $1, lockout_end = $2 WHERE id = $3`,
		failedCount, lockoutEnd, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) RoleExists(ctx context.Context, role models.Role) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM identity_roles WHERE name = $1)`, role)
	return exists, err
}

func (r *PostgresRepository) CreateRole(ctx context.Context, role models.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identity_roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role)
	return err
}

func (r *PostgresRepository) IsInRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM identity_user_roles WHERE user_id = $1 AND role_name = $2)`,
		userID, role)
	return exists, err
}

func (r *PostgresRepository) AddToRole(ctx context.Context, userID string, role models.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identity_user_roles (user_id, role_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, role)
	return err
}

func (r *PostgresRepository) RemoveFromRole(ctx context.Context, userID string, role models.Role) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM identity_user_roles WHERE user_id = $1 AND role_name = $2`, userID, role)
	return err
}

func (r *PostgresRepository) GetUserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.SelectContext(ctx, &roles,
		`SELECT role_name FROM identity_user_roles WHERE user_id = $1 ORDER BY role_name`, userID)
	if err != nil {
		return nil, err
	}
	return roles, nil
}
