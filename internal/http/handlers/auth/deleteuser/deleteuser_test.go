package deleteuser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) DeleteUser(ctx context.Context, requester *models.User, targetID, password string) error {
	args := m.Called(ctx, requester, targetID, password)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestDeleteUserHandler(t *testing.T) {
	const targetID = "6f1c1a6e-7d1a-4a57-9d55-0b8d3f0e2a10"
	requester := &models.User{ID: targetID, RoleID: models.RoleSalesman}

	tests := []struct {
		name       string
		body       string
		withUser   bool
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name:     "self delete with password",
			body:     `{"password":"secret123"}`,
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("DeleteUser", mock.Anything, requester, targetID, "secret123").Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"message":"User deleted successfully"}}`,
		},
		{
			name:     "empty body passes empty password",
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("DeleteUser", mock.Anything, requester, targetID, "").
					Return(fmt.Errorf("op: %w", models.NewError(models.ErrValidation, "password is required to delete your account"))).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"password is required to delete your account"}`,
		},
		{
			name:     "last admin",
			body:     `{}`,
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("DeleteUser", mock.Anything, requester, targetID, "").
					Return(fmt.Errorf("op: %w", models.ErrProtectedAccount)).Once()
			},
			wantStatus: http.StatusForbidden,
			wantBody:   `{"status":"Error","error":"cannot delete the last admin account"}`,
		},
		{
			name:     "wrong password",
			body:     `{"password":"nope"}`,
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("DeleteUser", mock.Anything, requester, targetID, "nope").
					Return(fmt.Errorf("op: %w", models.NewError(models.ErrInvalidCredentials, "incorrect password"))).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{"password":`,
			withUser:   true,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no user in context",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/auth/delete-user/"+targetID, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", targetID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withUser {
				ctx = middlewarectx.WithUser(ctx, requester)
			}
			req = req.WithContext(ctx)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
