package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

const userColumns = `user_id, first_name, last_name, username, email, password_hash,
			  role, status, avatar, cover_photo, profession, bio, wallet, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.PasswordHash, &u.Role, &u.Status, &u.Avatar, &u.CoverPhoto,
		&u.Profession, &u.Bio, &u.Wallet, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (first_name, last_name, username, email, password_hash, role, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING user_id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Username, user.Email,
		user.PasswordHash, user.Role, user.Status).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindUserByEmailOrUsername возвращает пользователя по email либо username.
func (s *Storage) FindUserByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error) {
	const op = "storage.FindUserByEmailOrUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, emailOrUsername))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserStatus переводит учётную запись в статус active, blocked или deleted.
func (s *Storage) UpdateUserStatus(ctx context.Context, userID int64, status string) (int, error) {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET status = $1 WHERE user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListUsers возвращает пользователей для админки с фильтрами и пагинацией.
func (s *Storage) ListUsers(ctx context.Context, status, role string, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE ($1 = '' OR status = $1)
			    AND ($2 = '' OR role = $2)
			  ORDER BY first_name
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, status, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
