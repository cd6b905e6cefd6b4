package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/http/middlewarectx"
	"github.com/indianduo/progression-engine/internal/models"
)

// MockService реализует интерфейс complete.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CompleteLesson(ctx context.Context, userUID, lessonID string, score int) (*models.LessonOutcome, error) {
	args := m.Called(ctx, userUID, lessonID, score)
	if res := args.Get(0); res != nil {
		return res.(*models.LessonOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCompleteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		lessonID       string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное завершение урока",
			lessonID: "hi-basics-2",
			body:     `{"score": 80}`,
			userUID:  "uid-1",
			setupMock: func(m *MockService) {
				outcome := &models.LessonOutcome{
					LessonID:      "hi-basics-2",
					XPGained:      18,
					TotalXP:       113,
					Level:         2,
					LevelUp:       true,
					CurrentStreak: 3,
				}
				m.On("CompleteLesson", mock.Anything, "uid-1", "hi-basics-2", 80).Return(outcome, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"xp_gained":18`,
		},
		{
			name:           "отсутствует пользователь в контексте",
			lessonID:       "hi-basics-2",
			body:           `{"score": 80}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "некорректный JSON",
			lessonID:       "hi-basics-2",
			body:           `{score`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "балл вне диапазона",
			lessonID:       "hi-basics-2",
			body:           `{"score": 150}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Score is above the allowed maximum`,
		},
		{
			name:     "урок заблокирован",
			lessonID: "hi-basics-3",
			body:     `{"score": 80}`,
			userUID:  "uid-1",
			setupMock: func(m *MockService) {
				m.On("CompleteLesson", mock.Anything, "uid-1", "hi-basics-3", 80).
					Return(nil, engine.ErrLessonNotAvailable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"lesson is locked or already completed"`,
		},
		{
			name:     "нет сердец",
			lessonID: "hi-basics-2",
			body:     `{"score": 80}`,
			userUID:  "uid-1",
			setupMock: func(m *MockService) {
				m.On("CompleteLesson", mock.Anything, "uid-1", "hi-basics-2", 80).
					Return(nil, engine.ErrInsufficientHearts)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"error":"no hearts left"`,
		},
		{
			name:     "ошибка сервиса",
			lessonID: "hi-basics-2",
			body:     `{"score": 80}`,
			userUID:  "uid-1",
			setupMock: func(m *MockService) {
				m.On("CompleteLesson", mock.Anything, "uid-1", "hi-basics-2", 80).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not complete lesson"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost,
				"/lessons/"+tt.lessonID+"/complete", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.lessonID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
