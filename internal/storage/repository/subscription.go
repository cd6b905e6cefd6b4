package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/indianduo/progression-engine/internal/models"
)

// CreateSubscription вставляет новую подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, user_uid, plan, status, activated_at, expires_at, canceled_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.UserUID, sub.Plan, sub.Status, sub.ActivatedAt,
		nullTime(sub.ExpiresAt), nullTime(sub.CanceledAt))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscription сохраняет состояние подписки и возвращает
// количество изменённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan = $1, status = $2, activated_at = $3, expires_at = $4, canceled_at = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Plan, sub.Status, sub.ActivatedAt,
		nullTime(sub.ExpiresAt), nullTime(sub.CanceledAt), sub.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetCurrentSubscription возвращает последнюю подписку пользователя,
// способную давать привилегии (active или canceled). Отсутствие такой
// подписки — не ошибка: возвращается nil, что означает план Free.
func (s *Storage) GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetCurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan, status, activated_at, expires_at, canceled_at
			  FROM subscriptions
			  WHERE user_uid = $1
			    AND status IN ('active', 'canceled')
			  ORDER BY activated_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	sub := &models.Subscription{}
	var expiresAt, canceledAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Plan, &sub.Status,
		&sub.ActivatedAt, &expiresAt, &canceledAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid {
		sub.ExpiresAt = &expiresAt.Time
	}
	if canceledAt.Valid {
		sub.CanceledAt = &canceledAt.Time
	}
	return sub, nil
}

// FindDueSubscriptions находит подписки с прошедшим оплаченным периодом,
// ещё не переведённые в expired.
func (s *Storage) FindDueSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.FindDueSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan, status, activated_at, expires_at, canceled_at
			  FROM subscriptions
			  WHERE status IN ('active', 'canceled')
			    AND expires_at < CURRENT_TIMESTAMP`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		var expiresAt, canceledAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.UserUID, &sub.Plan, &sub.Status,
			&sub.ActivatedAt, &expiresAt, &canceledAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if expiresAt.Valid {
			sub.ExpiresAt = &expiresAt.Time
		}
		if canceledAt.Valid {
			sub.CanceledAt = &canceledAt.Time
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkExpired переводит подписку в expired и возвращает количество
// изменённых строк.
func (s *Storage) MarkExpired(ctx context.Context, subscriptionID string) (int, error) {
	const op = "storage.MarkExpired"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = 'expired'
			  WHERE id = $1
			    AND status IN ('active', 'canceled')`
	result, err := s.DB.ExecContext(ctx, query, subscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
