package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gerbang/internal/models"
	"gerbang/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by AuthService. Handlers map these to HTTP statuses;
// anything else is treated as a server fault.
var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials deliberately covers both "no such user" and
	// "wrong password" so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenMalformed     = errors.New("token is malformed")
)

// AuthEventPublisher publishes audit events for signups and logins.
// Implemented by the RabbitMQ client; a nil publisher disables auditing.
type AuthEventPublisher interface {
	PublishAuthEvent(eventData map[string]interface{}) error
}

// AuthService handles the credential lifecycle: signup, login and
// token issuance/verification.
type AuthService struct {
	userRepo   repositories.UserRepository
	events     AuthEventPublisher
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService. TTL and bcrypt cost come
// from configuration so environments can tune them independently.
func NewAuthService(userRepo repositories.UserRepository, events AuthEventPublisher, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		events:     events,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// TokenTTL returns the lifetime of issued tokens. Handlers use it to
// align the cookie max-age with the token expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new user: hashes the password, persists the record
// and issues a session token. Returns ErrEmailTaken when the email is
// already registered.
func (s *AuthService) Signup(req models.SignupRequest) (*models.User, string, error) {
	email := NormalizeEmail(req.Email)

	// Pre-check for a friendlier error on the common path. The unique
	// index in the repository remains the authority for the race.
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Age:      req.Age,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// Two concurrent signups passed the pre-check; the store
			// picked the winner.
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.signup", user)
	return user, token, nil
}

// Login authenticates a user by email and password and issues a session
// token. Both unknown email and wrong password return
// ErrInvalidCredentials; the distinction only appears in server logs.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	normalized := NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("login failed for %s: no such user", normalized)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed for %s: password mismatch", normalized)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.login", user)
	return user, token, nil
}

// GetProfile fetches the user behind a verified token's subject ID.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// issueToken mints a signed HS256 token carrying the user's identity.
func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a session token, returning its
// claims. Expired tokens yield ErrTokenExpired; anything else that does
// not verify yields ErrTokenMalformed.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// publishEvent sends an audit event, best effort. Auth must not fail
// because the broker is down.
func (s *AuthService) publishEvent(kind string, user *models.User) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"event":   kind,
		"user_id": user.ID,
		"email":   user.Email,
		"at":      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishAuthEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for user %s: %v", kind, user.ID, err)
	}
}
