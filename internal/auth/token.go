package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arta-bank/arta_bank/internal/account"
	"github.com/arta-bank/arta_bank/internal/config"
)

var (
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carries the authenticated account identity inside a signed token.
type Claims struct {
	Name          string `json:"name"`
	NationalID    string `json:"national_id"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
	jwt.RegisteredClaims
}

// TokenPair bundles a short-lived access token with a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service signs and verifies HS256 tokens carrying account identity claims.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService builds a token service from the application configuration.
func NewService(cfg config.Config) *Service {
	return &Service{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// Issue mints the access/refresh token pair for an authenticated account.
func (s *Service) Issue(acct account.Account) (TokenPair, error) {
	now := time.Now()

	access, err := s.sign(acct, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(acct, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh verifies a refresh token and mints a fresh access token carrying
// the same identity claims.
func (s *Service) Refresh(refreshToken string) (string, int64, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", 0, err
	}

	now := time.Now()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(s.accessTTL))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTTL.Seconds()), nil
}

// Verify checks the token signature and expiry, distinguishing an expired
// token from a malformed or tampered one.
func (s *Service) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) sign(acct account.Account, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Name:          acct.Name,
		NationalID:    acct.NationalID,
		Phone:         acct.Phone,
		Email:         acct.Email,
		AccountNumber: acct.Number,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(acct.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
