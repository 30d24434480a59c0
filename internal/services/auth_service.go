package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to 24h.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

// RegisterUser creates a customer account with a hashed password.
func (s *AuthService) RegisterUser(req RegisterRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.createUser(req, models.RoleUser)
}

// EnsureAdmin creates an admin account unless the username is already taken.
func (s *AuthService) EnsureAdmin(req RegisterRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if existing, err := s.userRepo.GetByUsername(req.Username); err == nil {
		return existing, nil
	}
	return s.createUser(req, models.RoleAdmin)
}

func (s *AuthService) createUser(req RegisterRequest, role models.Role) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, apperr.Conflict("username '%s' already taken", username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, apperr.Conflict("email '%s' already registered", email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
		Status:   models.UserStatusActive,
		Wishlist: []string{},
	}
	if err := s.userRepo.Create(user); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": role}).Info("user registered")
	return user, nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(req LoginRequest) (string, *models.User, error) {
	if err := validateStruct(req); err != nil {
		return "", nil, err
	}
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		// Same message whether or not the username exists.
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if user.Status != models.UserStatusActive {
		return "", nil, apperr.Forbidden("account is %s", user.Status)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, user, nil
}

// ValidateToken parses a token and returns the principal it was issued to.
func (s *AuthService) ValidateToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.WithError(err).Debug("token validation failed")
		return models.Principal{}, apperr.Unauthorized("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Principal{}, apperr.Unauthorized("invalid token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return models.Principal{}, apperr.Unauthorized("token has no subject")
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return models.Principal{UserID: userID, Username: username, Role: models.Role(role)}, nil
}

// CurrentUser loads the account behind a principal and checks it may still act.
func (s *AuthService) CurrentUser(p models.Principal) (*models.User, error) {
	user, err := s.userRepo.GetByID(p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperr.Forbidden("account is %s", user.Status)
	}
	return user, nil
}
