package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	"github.com/studentgov/election-api/internal/service"
	"github.com/studentgov/election-api/pkg/response"
)

type userRepoStub struct {
	byEmail map[string]*models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	return nil
}

type otpRepoStub struct{}

func (s *otpRepoStub) Create(ctx context.Context, otp *models.OTP) error { return nil }
func (s *otpRepoStub) FindLatestByEmail(ctx context.Context, email string) (*models.OTP, error) {
	return nil, sql.ErrNoRows
}
func (s *otpRepoStub) MarkConsumed(ctx context.Context, id string) error { return nil }

type activityStub struct{}

func (s *activityStub) Create(ctx context.Context, entry *models.ActivityLog) error { return nil }

type mailerStub struct{}

func (s *mailerStub) EnqueueOTP(email, code string) error { return nil }

func newAuthHandler(t *testing.T, users *userRepoStub) *AuthHandler {
	t.Helper()
	svc := service.NewAuthService(users, &otpRepoStub{}, &activityStub{}, &mailerStub{}, nil, nil, service.AuthConfig{
		TokenSecret: "test_secret",
		TokenExpiry: time.Hour,
		Issuer:      "test",
		EmailDomain: "iitk.ac.in",
		OTPExpiry:   10 * time.Minute,
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerLoginSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{byEmail: map[string]*models.User{
		"asha@iitk.ac.in": {ID: "u-1", Email: "asha@iitk.ac.in", PasswordHash: string(hash), Role: models.RoleStudent},
	}}
	handler := newAuthHandler(t, users)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.LoginRequest{Email: "asha@iitk.ac.in", Password: "s3cret-pass"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestAuthHandlerLoginRejectsBadPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{byEmail: map[string]*models.User{
		"asha@iitk.ac.in": {ID: "u-1", Email: "asha@iitk.ac.in", PasswordHash: string(hash), Role: models.RoleStudent},
	}}
	handler := newAuthHandler(t, users)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.LoginRequest{Email: "asha@iitk.ac.in", Password: "wrong"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t, &userRepoStub{byEmail: map[string]*models.User{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
