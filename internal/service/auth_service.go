package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type authOTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	FindLatestByEmail(ctx context.Context, email string) (*models.OTP, error)
	MarkConsumed(ctx context.Context, id string) error
}

type activityRecorder interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

// OTPMailer delivers one-time codes. Delivery happens on the job queue so
// registration never blocks on SMTP.
type OTPMailer interface {
	EnqueueOTP(email, code string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	EmailDomain string
	OTPExpiry   time.Duration
}

// AuthService provides registration and authentication use cases.
type AuthService struct {
	users     authUserRepository
	otps      authOTPRepository
	activity  activityRecorder
	mailer    OTPMailer
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, otps authOTPRepository, activity activityRecorder, mailer OTPMailer, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.OTPExpiry <= 0 {
		config.OTPExpiry = 10 * time.Minute
	}
	return &AuthService{
		users:     users,
		otps:      otps,
		activity:  activity,
		mailer:    mailer,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register issues an OTP to an institutional email address. Already
// registered emails are rejected before any code is generated.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if s.config.EmailDomain != "" && !strings.HasSuffix(email, "@"+s.config.EmailDomain) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("email must belong to %s", s.config.EmailDomain))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}

	code, err := generateOTPCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash otp")
	}

	otp := &models.OTP{
		Email:     email,
		OTPHash:   string(hash),
		ExpiresAt: s.now().Add(s.config.OTPExpiry),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store otp")
	}

	if err := s.mailer.EnqueueOTP(email, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue otp email")
	}
	return nil
}

// VerifyOTP completes registration: the latest unconsumed code must match and
// be unexpired. The code is consumed on success and on expiry alike.
func (s *AuthService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	otp, err := s.otps.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no pending verification for this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load otp")
	}

	if s.now().After(otp.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "verification code has expired")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.OTPHash), []byte(req.OTP)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "verification code does not match")
	}

	if err := s.otps.MarkConsumed(ctx, otp.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume otp")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         req.Name,
		RollNo:       req.RollNo,
		Department:   req.Department,
		Phone:        req.Phone,
		Role:         models.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.record(ctx, &user.ID, models.ActionUserRegistered, map[string]string{"email": email})

	return s.issueToken(user)
}

// Login authenticates a registered user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	s.record(ctx, &user.ID, models.ActionUserLogin, nil)

	return s.issueToken(user)
}

// Profile returns the authenticated user's details.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	info := userInfo(user)
	return &info, nil
}

// ValidateToken parses and verifies a user access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.Type != models.TokenTypeUser {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is not a user token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (*models.LoginResponse, error) {
	now := s.now()
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Type:   models.TokenTypeUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    now,
		User:        userInfo(user),
	}, nil
}

func (s *AuthService) record(ctx context.Context, userID *string, action string, meta map[string]string) {
	if s.activity == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	if err := s.activity.Create(ctx, &models.ActivityLog{UserID: userID, Action: action, Metadata: payload}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		RollNo:     user.RollNo,
		Department: user.Department,
		Role:       user.Role,
	}
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
