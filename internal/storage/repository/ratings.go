package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/models"
)

// UpsertRating создаёт оценку по подписке либо обновляет существующую.
// Пустой review при обновлении не затирает прежний текст.
func (s *Storage) UpsertRating(ctx context.Context, rating models.Rating) (int64, error) {
	const op = "storage.UpsertRating"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ratings (subscription_id, seeker_id, expert_id, rating_value, review)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (subscription_id) DO UPDATE
			      SET rating_value = EXCLUDED.rating_value,
			          review = COALESCE(EXCLUDED.review, ratings.review),
			          updated_at = NOW()
			  RETURNING rating_id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		rating.SubscriptionID, rating.SeekerID, rating.ExpertID,
		rating.RatingValue, rating.Review).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RecomputeExpertRating пересчитывает среднюю оценку эксперта (2 знака)
// и записывает её в профиль.
func (s *Storage) RecomputeExpertRating(ctx context.Context, expertID int64) error {
	const op = "storage.RecomputeExpertRating"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expert_profiles
			  SET overall_rating = (
			      SELECT COALESCE(ROUND(AVG(rating_value), 2), 0)
			      FROM ratings
			      WHERE expert_id = $1
			  )
			  WHERE expert_id = $1`
	if _, err := s.DB.ExecContext(ctx, query, expertID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRatingsForExpert возвращает оценки эксперта с данными авторов, новые первыми.
func (s *Storage) ListRatingsForExpert(ctx context.Context, expertID int64) ([]*models.RatingWithSeeker, error) {
	const op = "storage.ListRatingsForExpert"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.rating_id, r.subscription_id, r.seeker_id, r.expert_id,
			      r.rating_value, r.review, r.created_at, r.updated_at,
			      u.user_id, u.username, u.first_name, u.last_name, u.avatar
			  FROM ratings r
			  JOIN users u ON u.user_id = r.seeker_id
			  WHERE r.expert_id = $1
			  ORDER BY r.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, expertID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RatingWithSeeker
	for rows.Next() {
		var item models.RatingWithSeeker
		if err := rows.Scan(&item.RatingID, &item.SubscriptionID, &item.SeekerID, &item.ExpertID,
			&item.RatingValue, &item.Review, &item.CreatedAt, &item.UpdatedAt,
			&item.Seeker.UserID, &item.Seeker.Username, &item.Seeker.FirstName,
			&item.Seeker.LastName, &item.Seeker.Avatar); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetRatingSummary возвращает агрегат по оценкам эксперта.
func (s *Storage) GetRatingSummary(ctx context.Context, expertID int64) (*models.RatingSummary, error) {
	const op = "storage.GetRatingSummary"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(ROUND(AVG(rating_value), 2), 0), COUNT(*)
			  FROM ratings
			  WHERE expert_id = $1`
	var avg decimal.Decimal
	var total int
	if err := s.DB.QueryRowContext(ctx, query, expertID).Scan(&avg, &total); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.RatingSummary{Avg: avg, Total: total}, nil
}
