package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeActivation = "activation"
	loginTokenTTL     = time.Hour * 24 * 30
)

var ErrInvalidToken = errors.New("invalid or expired token")

func GenerateLoginToken(secret string, user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(loginTokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func GenerateActivationToken(secret, userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"purpose": purposeActivation,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseActivationToken returns the user id carried by an activation token.
func ParseActivationToken(secret, tokenString string) (string, error) {
	claims, err := ParseToken(secret, tokenString)
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeActivation {
		return "", ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
