package repository

import (
	"context"
	"fmt"

	"github.com/indianduo/progression-engine/internal/models"
)

// ListLanguages возвращает каталог изучаемых языков.
func (s *Storage) ListLanguages(ctx context.Context) ([]models.Language, error) {
	const op = "storage.ListLanguages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code, name, native_name, flag
			  FROM languages
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Language
	for rows.Next() {
		var l models.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.NativeName, &l.Flag); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUnits возвращает разделы каталога для языка в заданном порядке.
func (s *Storage) ListUnits(ctx context.Context, languageCode string) ([]models.Unit, error) {
	const op = "storage.ListUnits"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, language_code, title, description, position
			  FROM units
			  WHERE language_code = $1
			  ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query, languageCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.LanguageCode, &u.Title, &u.Description, &u.Position); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListLessons возвращает уроки языка в сквозном порядке раздел → урок.
// Именно этот порядок определяет линейную прогрессию.
func (s *Storage) ListLessons(ctx context.Context, languageCode string) ([]models.Lesson, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.unit_id, l.title, l.type, l.position
			  FROM lessons l
			  JOIN units u ON u.id = l.unit_id
			  WHERE u.language_code = $1
			  ORDER BY u.position, l.position`
	rows, err := s.DB.QueryContext(ctx, query, languageCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Lesson
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.UnitID, &l.Title, &l.Type, &l.Position); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetLessonLanguage возвращает код языка, которому принадлежит урок.
func (s *Storage) GetLessonLanguage(ctx context.Context, lessonID string) (string, error) {
	const op = "storage.GetLessonLanguage"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.language_code
			  FROM lessons l
			  JOIN units u ON u.id = l.unit_id
			  WHERE l.id = $1`
	var code string
	if err := s.DB.QueryRowContext(ctx, query, lessonID).Scan(&code); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return code, nil
}
