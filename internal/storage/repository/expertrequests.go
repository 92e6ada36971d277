package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

const expertRequestColumns = `request_id, user_id, skill, company, position, description,
			  proof_urls, status, admin_message, created_at, reviewed_at`

func scanExpertRequest(row interface{ Scan(dest ...any) error }) (*models.ExpertRequest, error) {
	req := &models.ExpertRequest{}
	if err := row.Scan(&req.RequestID, &req.UserID, &req.Skill, &req.Company, &req.Position,
		&req.Description, &req.ProofURLs, &req.Status, &req.AdminMessage,
		&req.CreatedAt, &req.ReviewedAt); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateExpertRequest сохраняет заявку на статус эксперта в состоянии pending.
func (s *Storage) CreateExpertRequest(ctx context.Context, req models.ExpertRequest) (int64, error) {
	const op = "storage.CreateExpertRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expert_requests (user_id, skill, company, position, description, proof_urls)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING request_id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		req.UserID, req.Skill, req.Company, req.Position, req.Description, req.ProofURLs).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindPendingExpertRequest возвращает непросмотренную заявку пользователя, если она есть.
func (s *Storage) FindPendingExpertRequest(ctx context.Context, userID int64) (*models.ExpertRequest, error) {
	const op = "storage.FindPendingExpertRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expertRequestColumns + `
			  FROM expert_requests
			  WHERE user_id = $1 AND status = 'pending'
			  ORDER BY created_at DESC
			  LIMIT 1`
	req, err := scanExpertRequest(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// ListExpertRequestsByUser возвращает заявки пользователя, новые первыми.
func (s *Storage) ListExpertRequestsByUser(ctx context.Context, userID int64) ([]*models.ExpertRequest, error) {
	const op = "storage.ListExpertRequestsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expertRequestColumns + `
			  FROM expert_requests
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpertRequest
	for rows.Next() {
		req, err := scanExpertRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListExpertRequests возвращает заявки для админки, опционально по статусу.
func (s *Storage) ListExpertRequests(ctx context.Context, status string, limit, offset int) ([]*models.ExpertRequest, error) {
	const op = "storage.ListExpertRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expertRequestColumns + `
			  FROM expert_requests
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpertRequest
	for rows.Next() {
		req, err := scanExpertRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DecideExpertRequest переводит pending-заявку в approved или rejected
// и возвращает её владельца. Уже рассмотренная заявка — ErrNotFound.
func (s *Storage) DecideExpertRequest(ctx context.Context, requestID int64, status string, adminMessage *string) (*models.ExpertRequest, error) {
	const op = "storage.DecideExpertRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expert_requests
			  SET status = $1, admin_message = $2, reviewed_at = NOW()
			  WHERE request_id = $3 AND status = 'pending'
			  RETURNING ` + expertRequestColumns
	req, err := scanExpertRequest(s.DB.QueryRowContext(ctx, query, status, adminMessage, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}
