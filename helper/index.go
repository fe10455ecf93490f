package helper

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tourism_marketplace/model"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func ValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// TokenIssuer signs and parses the HS256 tokens carrying a model.Principal.
type TokenIssuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

func (t *TokenIssuer) GenerateAccessToken(p model.Principal) (string, error) {
	return t.sign(p, tokenTypeAccess, t.AccessTTL)
}

func (t *TokenIssuer) GenerateRefreshToken(p model.Principal) (string, error) {
	return t.sign(p, tokenTypeRefresh, t.RefreshTTL)
}

func (t *TokenIssuer) sign(p model.Principal, typ string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userId"] = p.UserID
	claims["email"] = p.Email
	claims["role"] = p.Role
	claims["type"] = typ
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString(t.Secret)
}

// ParseAccessToken validates the token and returns its principal.
func (t *TokenIssuer) ParseAccessToken(tokenString string) (*model.Principal, error) {
	return t.parse(tokenString, tokenTypeAccess)
}

func (t *TokenIssuer) ParseRefreshToken(tokenString string) (*model.Principal, error) {
	return t.parse(tokenString, tokenTypeRefresh)
}

func (t *TokenIssuer) parse(tokenString, typ string) (*model.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	if claimType, _ := claims["type"].(string); claimType != typ {
		return nil, fmt.Errorf("expected %s token", typ)
	}

	userID, _ := claims["userId"].(float64)
	if userID <= 0 {
		return nil, errors.New("token has no user")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &model.Principal{UserID: uint(userID), Email: email, Role: role}, nil
}
