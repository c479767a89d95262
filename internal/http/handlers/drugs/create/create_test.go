package create

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.DummyDrug) (*models.Drug, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Drug), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание",
			body: `{"name":"Aspirin","quantity":10,"mfg_date":"2025-01-01","exp_date":"2027-01-01","price":"12.50"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(d models.DummyDrug) bool {
					return d.Name == "Aspirin" && d.Price.Equal(decimal.RequireFromString("12.5"))
				})).Return(&models.Drug{ID: 7, Name: "Aspirin", Price: decimal.RequireFromString("12.50")}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":7`,
		},
		{
			name:           "неверный формат даты",
			body:           `{"name":"Aspirin","quantity":10,"mfg_date":"01.01.2025","exp_date":"2027-01-01","price":1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field MfgDate must be a date in format YYYY-MM-DD`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "ошибка бизнес-валидации",
			body: `{"name":"Aspirin","quantity":10,"mfg_date":"2025-01-01","exp_date":"2024-01-01","price":1}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("op: %w", models.NewError(models.ErrValidation, "exp_date must not be earlier than mfg_date"))).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `exp_date must not be earlier than mfg_date`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/drugs", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
