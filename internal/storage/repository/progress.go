package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/indianduo/progression-engine/internal/models"
)

// GetProgress возвращает запись прогресса пользователя.
func (s *Storage) GetProgress(ctx context.Context, userUID string) (*models.Progress, error) {
	const op = "storage.GetProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, hearts, heart_capacity, last_heart_loss_at, gems, total_xp,
			      current_streak, longest_streak, last_activity_date
			  FROM user_progress
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	p := &models.Progress{}
	var lastLoss, lastActivity sql.NullTime
	if err := row.Scan(&p.UserUID, &p.Hearts, &p.HeartCapacity, &lastLoss, &p.Gems,
		&p.TotalXP, &p.CurrentStreak, &p.LongestStreak, &lastActivity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lastLoss.Valid {
		p.LastHeartLossAt = &lastLoss.Time
	}
	if lastActivity.Valid {
		p.LastActivityDate = &lastActivity.Time
	}
	return p, nil
}

// UpdateProgress сохраняет запись прогресса целиком и возвращает
// количество изменённых строк.
func (s *Storage) UpdateProgress(ctx context.Context, p models.Progress) (int, error) {
	const op = "storage.UpdateProgress"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_progress
			  SET hearts = $1, heart_capacity = $2, last_heart_loss_at = $3, gems = $4,
			      total_xp = $5, current_streak = $6, longest_streak = $7, last_activity_date = $8
			  WHERE user_uid = $9`
	result, err := s.DB.ExecContext(ctx, query,
		p.Hearts, p.HeartCapacity, nullTime(p.LastHeartLossAt), p.Gems,
		p.TotalXP, p.CurrentStreak, p.LongestStreak, nullTime(p.LastActivityDate), p.UserUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListCompletions возвращает отметки о завершении уроков пользователя
// для изучаемого языка.
func (s *Storage) ListCompletions(ctx context.Context, userUID, languageCode string) ([]models.Completion, error) {
	const op = "storage.ListCompletions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.user_uid, c.lesson_id, c.score, c.completed_at
			  FROM lesson_completions c
			  JOIN lessons l ON l.id = c.lesson_id
			  JOIN units u ON u.id = l.unit_id
			  WHERE c.user_uid = $1
			    AND u.language_code = $2
			  ORDER BY c.completed_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID, languageCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Completion
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.UserUID, &c.LessonID, &c.Score, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ApplyCompletionTx атомарно сохраняет обновлённый прогресс и отметку
// о завершении урока. Частичное применение невозможно: либо фиксируются
// обе записи, либо ни одной.
func (s *Storage) ApplyCompletionTx(ctx context.Context, p models.Progress, c models.Completion) error {
	const op = "storage.ApplyCompletionTx"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE user_progress
			  SET hearts = $1, heart_capacity = $2, last_heart_loss_at = $3, gems = $4,
			      total_xp = $5, current_streak = $6, longest_streak = $7, last_activity_date = $8
			  WHERE user_uid = $9`
	if _, err := tx.ExecContext(ctx, query,
		p.Hearts, p.HeartCapacity, nullTime(p.LastHeartLossAt), p.Gems,
		p.TotalXP, p.CurrentStreak, p.LongestStreak, nullTime(p.LastActivityDate), p.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO lesson_completions (user_uid, lesson_id, score, completed_at)
			 VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, c.UserUID, c.LessonID, c.Score, c.CompletedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
