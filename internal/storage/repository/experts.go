package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

// GetExpertProfile возвращает профиль эксперта по его ID.
func (s *Storage) GetExpertProfile(ctx context.Context, expertID int64) (*models.ExpertProfile, error) {
	const op = "storage.GetExpertProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT expert_id, price_model, price_amount, currency, is_verified, overall_rating
			  FROM expert_profiles
			  WHERE expert_id = $1`
	var p models.ExpertProfile
	err := s.DB.QueryRowContext(ctx, query, expertID).Scan(
		&p.ExpertID, &p.PriceModel, &p.PriceAmount, &p.Currency, &p.IsVerified, &p.OverallRating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpsertExpertProfile создаёт профиль эксперта либо помечает существующий верифицированным.
// Используется при одобрении заявки админом.
func (s *Storage) UpsertExpertProfile(ctx context.Context, profile models.ExpertProfile) error {
	const op = "storage.UpsertExpertProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expert_profiles (expert_id, price_model, price_amount, currency, is_verified)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (expert_id) DO UPDATE SET is_verified = EXCLUDED.is_verified`
	_, err := s.DB.ExecContext(ctx, query,
		profile.ExpertID, profile.PriceModel, profile.PriceAmount, profile.Currency, profile.IsVerified)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListExperts возвращает каталог экспертов с фильтрами, сортировкой и пагинацией.
// Учитываются только активные пользователи.
func (s *Storage) ListExperts(ctx context.Context, filter models.ExpertFilter) ([]*models.ExpertCard, int, error) {
	const op = "storage.ListExperts"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	orderBy := `e.overall_rating DESC`
	switch filter.Sort {
	case "rating_asc":
		orderBy = `e.overall_rating ASC`
	case "price_asc":
		orderBy = `e.price_amount ASC`
	case "price_desc":
		orderBy = `e.price_amount DESC`
	}

	where := `u.status = 'active'
			    AND ($1 = '' OR u.first_name ILIKE '%' || $1 || '%'
			         OR u.last_name ILIKE '%' || $1 || '%'
			         OR u.username ILIKE '%' || $1 || '%'
			         OR u.profession ILIKE '%' || $1 || '%')
			    AND ($2::numeric IS NULL OR e.price_amount >= $2)
			    AND ($3::numeric IS NULL OR e.price_amount <= $3)`

	var total int
	countQuery := `SELECT COUNT(*)
			  FROM expert_profiles e
			  JOIN users u ON u.user_id = e.expert_id
			  WHERE ` + where
	if err := s.DB.QueryRowContext(ctx, countQuery,
		filter.Query, filter.MinPrice, filter.MaxPrice).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT e.expert_id, e.price_model, e.price_amount, e.currency, e.overall_rating, e.is_verified,
			      u.user_id, u.username, u.first_name, u.last_name, u.avatar
			  FROM expert_profiles e
			  JOIN users u ON u.user_id = e.expert_id
			  WHERE ` + where + `
			  ORDER BY ` + orderBy + `
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Query, filter.MinPrice, filter.MaxPrice, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpertCard
	for rows.Next() {
		var card models.ExpertCard
		if err := rows.Scan(&card.ExpertID, &card.PriceModel, &card.PriceAmount, &card.Currency,
			&card.OverallRating, &card.IsVerified,
			&card.User.UserID, &card.User.Username, &card.User.FirstName,
			&card.User.LastName, &card.User.Avatar); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &card)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}
