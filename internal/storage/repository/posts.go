package repository

import (
	"context"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

// CreatePost сохраняет публикацию эксперта и возвращает её целиком.
func (s *Storage) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	const op = "storage.CreatePost"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO posts (expert_id, title, content, visibility)
			  VALUES ($1, $2, $3, $4)
			  RETURNING post_id, expert_id, title, content, visibility, created_at`
	var created models.Post
	if err := s.DB.QueryRowContext(ctx, query,
		post.ExpertID, post.Title, post.Content, post.Visibility).Scan(
		&created.PostID, &created.ExpertID, &created.Title,
		&created.Content, &created.Visibility, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// ListPublicPosts возвращает публичные неудалённые публикации с авторами,
// новые первыми.
func (s *Storage) ListPublicPosts(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error) {
	const op = "storage.ListPublicPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.post_id, p.expert_id, p.title, p.content, p.visibility, p.created_at,
			      u.user_id, u.username, u.first_name, u.last_name, u.avatar
			  FROM posts p
			  JOIN users u ON u.user_id = p.expert_id
			  WHERE p.deleted_at IS NULL AND p.visibility = 'public'
			  ORDER BY p.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PostWithAuthor
	for rows.Next() {
		var item models.PostWithAuthor
		if err := rows.Scan(&item.PostID, &item.ExpertID, &item.Title,
			&item.Content, &item.Visibility, &item.CreatedAt,
			&item.Author.UserID, &item.Author.Username, &item.Author.FirstName,
			&item.Author.LastName, &item.Author.Avatar); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
