package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]*models.User)}
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

type otpRepoStub struct {
	otps []*models.OTP
}

func (s *otpRepoStub) Create(ctx context.Context, otp *models.OTP) error {
	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}
	clone := *otp
	s.otps = append(s.otps, &clone)
	return nil
}

func (s *otpRepoStub) FindLatestByEmail(ctx context.Context, email string) (*models.OTP, error) {
	for i := len(s.otps) - 1; i >= 0; i-- {
		if s.otps[i].Email == email && !s.otps[i].Consumed {
			clone := *s.otps[i]
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *otpRepoStub) MarkConsumed(ctx context.Context, id string) error {
	for _, otp := range s.otps {
		if otp.ID == id {
			otp.Consumed = true
			return nil
		}
	}
	return sql.ErrNoRows
}

type mailerStub struct {
	sent []string
}

func (m *mailerStub) EnqueueOTP(email, code string) error {
	m.sent = append(m.sent, code)
	return nil
}

func newAuthFixture() (*AuthService, *userRepoStub, *otpRepoStub, *mailerStub) {
	users := newUserRepoStub()
	otps := &otpRepoStub{}
	mail := &mailerStub{}
	svc := NewAuthService(users, otps, &activityStub{}, mail, validator.New(), nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "election-api",
		EmailDomain: "iitk.ac.in",
		OTPExpiry:   10 * time.Minute,
	})
	return svc, users, otps, mail
}

func TestRegisterIssuesOTP(t *testing.T) {
	svc, _, otps, mail := newAuthFixture()

	err := svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"})
	require.NoError(t, err)
	require.Len(t, otps.otps, 1)
	require.Len(t, mail.sent, 1)

	// the stored hash must verify against the mailed code
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(otps.otps[0].OTPHash), []byte(mail.sent[0])))
}

func TestRegisterRejectsForeignDomain(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	err := svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@gmail.com"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterRejectsExistingAccount(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	require.NoError(t, users.Create(context.Background(), &models.User{Email: "arya@iitk.ac.in"}))

	err := svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func verifyRequest() dto.VerifyOTPRequest {
	return dto.VerifyOTPRequest{
		Email:      "arya@iitk.ac.in",
		Password:   "strongpassword",
		Name:       "Arya",
		RollNo:     "210101",
		Department: "CSE",
	}
}

func TestVerifyOTPCreatesAccount(t *testing.T) {
	svc, users, _, mail := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	req := verifyRequest()
	req.OTP = mail.sent[0]
	resp, err := svc.VerifyOTP(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Len(t, users.users, 1)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	req := verifyRequest()
	req.OTP = "000000"
	_, err := svc.VerifyOTP(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestVerifyOTPRejectsExpiredCode(t *testing.T) {
	svc, _, _, mail := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	svc.now = func() time.Time { return time.Now().UTC().Add(11 * time.Minute) }

	req := verifyRequest()
	req.OTP = mail.sent[0]
	_, err := svc.VerifyOTP(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestVerifyOTPConsumesCode(t *testing.T) {
	svc, _, otps, mail := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	req := verifyRequest()
	req.OTP = mail.sent[0]
	_, err := svc.VerifyOTP(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, otps.otps[0].Consumed)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, _, mail := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	req := verifyRequest()
	req.OTP = mail.sent[0]
	_, err := svc.VerifyOTP(context.Background(), req)
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "arya@iitk.ac.in", Password: "strongpassword"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.TokenTypeUser, claims.Type)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _, _, mail := newAuthFixture()
	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: "arya@iitk.ac.in"}))

	req := verifyRequest()
	req.OTP = mail.sent[0]
	_, err := svc.VerifyOTP(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "arya@iitk.ac.in", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}
