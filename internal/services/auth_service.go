package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

const DefaultTokenTTL = 12 * time.Hour

// Claims is the admin session token payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users     UserStore
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

// Login checks the bcrypt password and issues an HS256 token. Unknown
// emails, wrong passwords and disabled accounts all fail the same way.
func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Field: "email", Msg: "email and password are required"}
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, errBadCredentials
		}
		return LoginResult{}, domain.InternalError{Err: err}
	}
	if !u.Active || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "rejected user_id="+fmt.Sprint(u.ID))
		return LoginResult{}, errBadCredentials
	}

	token, exp, err := s.Issue(u)
	if err != nil {
		return LoginResult{}, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s AuthService) Issue(u models.User) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := clock(s.Now).now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	return signed, exp, err
}

// ParseToken verifies signature, algorithm and expiry.
func (s AuthService) ParseToken(raw string) (Claims, error) {
	var claims Claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(s.Now))
	}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid or expired token"}
	}
	if claims.UserID <= 0 || claims.Role == "" {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token claims"}
	}
	return claims, nil
}

func (s AuthService) Me(ctx context.Context, userID int64) (models.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return u, domain.UnauthorizedError{Msg: "account no longer exists"}
		}
		return u, domain.InternalError{Err: err}
	}
	if !u.Active {
		return models.User{}, domain.UnauthorizedError{Msg: "account disabled"}
	}
	return u, nil
}

// EnsureUser creates or resets an operator account; used by `umrahd seed`.
func (s AuthService) EnsureUser(ctx context.Context, name, email, password, role string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsEmail(email) {
		return 0, domain.ValidationError{Field: "email", Msg: "enter a valid email address"}
	}
	if len(password) < 8 {
		return 0, domain.ValidationError{Field: "password", Msg: "use at least 8 characters"}
	}
	if role != domain.RoleAdmin && role != domain.RoleDispatcher {
		return 0, domain.ValidationError{Field: "role", Msg: "must be admin or dispatcher"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.Users.Upsert(ctx, models.User{
		Name:         utils.FirstNonEmpty(utils.NormalizeSpace(name), email),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
}
