package repositories

import (
	"context"
	"time"

	"storefront/models"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// List returns one page of users, newest first. There is no caching between
// pages; every call re-queries.
func (r *UserRepository) List(ctx context.Context, page, size int) ([]models.User, int, error) {
	offset := (page - 1) * size

	var total int
	if err := models.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := models.DB.Query(ctx,
		`SELECT id, email, full_name, COALESCE(phone, ''), role, is_active, created_at, updated_at
		 FROM users ORDER BY id DESC LIMIT $1 OFFSET $2`,
		size, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := models.DB.QueryRow(ctx,
		`SELECT id, email, full_name, COALESCE(phone, ''), role, is_active, created_at, updated_at
		 FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := models.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&count)
	return count > 0, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	return models.DB.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, phone, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, true, $6, $7) RETURNING id, created_at, updated_at`,
		user.Email, user.Password, user.FullName, user.Phone, user.Role, now, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	_, err := models.DB.Exec(ctx,
		`UPDATE users SET email = $1, full_name = $2, phone = $3, role = $4, updated_at = $5 WHERE id = $6`,
		user.Email, user.FullName, user.Phone, user.Role, time.Now(), user.ID)
	return err
}

// ToggleStatus flips is_active and returns the new value.
func (r *UserRepository) ToggleStatus(ctx context.Context, id int) (bool, error) {
	var isActive bool
	err := models.DB.QueryRow(ctx,
		`UPDATE users SET is_active = NOT is_active, updated_at = $1 WHERE id = $2 RETURNING is_active`,
		time.Now(), id).Scan(&isActive)
	return isActive, err
}
