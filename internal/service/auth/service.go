package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"janmitra/internal/config"
	"janmitra/internal/domain"
	"janmitra/internal/kv"
	"janmitra/internal/logging"
	"janmitra/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\+91[6-9]\d{9}$`)

type Service interface {
	StartVerification(ctx context.Context, input domain.StartVerificationInput) (string, error)
	VerifyPhone(ctx context.Context, input domain.VerifyPhoneInput) (*domain.AuthResponse, error)
	OfficialLogin(ctx context.Context, input domain.OfficialLoginInput) (*domain.AuthResponse, error)

	GenerateToken(p *domain.Principal) (string, error)
	ValidateToken(token string) (*Claims, error)
	// ResolvePrincipal turns a raw bearer token into an active principal.
	ResolvePrincipal(ctx context.Context, token string) (*domain.Principal, error)
}

type Claims struct {
	ID    uuid.UUID `json:"id"`
	Role  string    `json:"role"`
	Email string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type service struct {
	citizenRepo  repository.CitizenRepository
	officialRepo repository.OfficialRepository
	store        kv.Store
	cfg          *config.Config
}

func NewService(citizenRepo repository.CitizenRepository, officialRepo repository.OfficialRepository, store kv.Store, cfg *config.Config) Service {
	return &service{
		citizenRepo:  citizenRepo,
		officialRepo: officialRepo,
		store:        store,
		cfg:          cfg,
	}
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// StartVerification stores a fresh six digit code for phone. The code is
// returned so non-production builds can echo it back.
func (s *service) StartVerification(ctx context.Context, input domain.StartVerificationInput) (string, error) {
	phone := strings.TrimSpace(input.Phone)
	if !phonePattern.MatchString(phone) {
		return "", domain.ErrInvalidPhone
	}

	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	if err := s.store.Set(ctx, otpKey(phone), []byte(code), s.cfg.OTPExpiry); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	logging.Info().Str("phone", maskPhone(phone)).Msg("verification code issued")
	return code, nil
}

func (s *service) VerifyPhone(ctx context.Context, input domain.VerifyPhoneInput) (*domain.AuthResponse, error) {
	phone := strings.TrimSpace(input.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, domain.ErrInvalidPhone
	}

	stored, err := s.store.Get(ctx, otpKey(phone))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, domain.ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("load otp: %w", err)
	}
	if string(stored) != input.OTP {
		return nil, domain.ErrInvalidOTP
	}
	if err := s.store.Del(ctx, otpKey(phone)); err != nil {
		logging.Warn().Err(err).Msg("failed to delete used otp")
	}

	citizen, err := s.citizenRepo.FindOrCreateByPhone(ctx, phone, input.Name)
	if err != nil {
		return nil, err
	}
	if !citizen.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	principal := citizen.Principal()
	token, err := s.GenerateToken(principal)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Success: true, Token: token, User: principal}, nil
}

func (s *service) OfficialLogin(ctx context.Context, input domain.OfficialLoginInput) (*domain.AuthResponse, error) {
	official, err := s.officialRepo.GetByLoginID(ctx, strings.TrimSpace(input.LoginID))
	if err != nil {
		return nil, err
	}
	if official == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(official.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !official.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	if err := s.officialRepo.TouchLastLogin(ctx, official.ID); err != nil {
		logging.Warn().Err(err).Str("official_id", official.ID.String()).Msg("failed to record last login")
	}

	principal := official.Principal()
	token, err := s.GenerateToken(principal)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Success: true, Token: token, User: principal}, nil
}

func (s *service) GenerateToken(p *domain.Principal) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:    p.ID,
		Role:  string(p.Role),
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, domain.ErrTokenExpired
	}
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == uuid.Nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *service) ResolvePrincipal(ctx context.Context, tokenString string) (*domain.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	var principal *domain.Principal
	switch role {
	case domain.RoleCitizen:
		citizen, err := s.citizenRepo.GetByID(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if citizen != nil {
			principal = citizen.Principal()
		}
	case domain.RoleStaff, domain.RoleSupervisor:
		official, err := s.officialRepo.GetByID(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		// a staff token must not resolve to a supervisor record or the reverse
		if official != nil && official.Role == role {
			principal = official.Principal()
		}
	}

	if principal == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	if !principal.Active {
		return nil, domain.ErrAccountDeactivated
	}
	return principal, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
