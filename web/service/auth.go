package service

import (
	"errors"
	"os"
	"strconv"
	"time"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/util/random"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 72 * time.Hour
)

// Claims are the JWT claims carried by API credentials. The typ claim keeps
// refresh tokens from being replayed as access tokens.
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret []byte
}

func NewAuthService() *AuthService {
	secret := os.Getenv("TP_JWT_SECRET")
	if secret == "" {
		// Per-process fallback; tokens do not survive a restart without a
		// configured secret.
		secret = random.Seq(32)
	}
	return &AuthService{secret: []byte(secret)}
}

// IssueTokenPair returns a short-lived access token and a longer-lived
// refresh token for the authenticated user.
func (s *AuthService) IssueTokenPair(u *model.User) (string, string, error) {
	access, err := s.sign(u, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.sign(u, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh verifies a refresh token and issues a new access token for the
// account it names, provided the account still exists and is active.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.ParseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return "", errors.New("invalid token subject")
	}

	db := database.GetDB()
	user := &model.User{}
	if err := db.First(user, id).Error; err != nil {
		return "", errors.New("unknown user")
	}
	if !user.IsActive {
		return "", errors.New("account disabled")
	}
	return s.sign(user, tokenTypeAccess, accessTokenTTL)
}

// ParseToken validates signature, expiry and token type, returning claims.
func (s *AuthService) ParseToken(token string, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != wantType {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

// ParseAccessToken validates an access token and returns the user id it
// names.
func (s *AuthService) ParseAccessToken(token string) (int, error) {
	claims, err := s.ParseToken(token, tokenTypeAccess)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errors.New("invalid token subject")
	}
	return id, nil
}

func (s *AuthService) sign(u *model.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:  u.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(u.Id),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
