package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/oakline/banklink/internal/domain"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrConfirmMismatch = errors.New("confirmation token does not match the request")
)

const confirmPurpose = "transfer_confirm"

// GenerateSessionToken issues the bearer token returned by login.
func GenerateSessionToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseSessionToken validates a bearer token and returns the user id.
func ParseSessionToken(secret []byte, tokenStr string) (string, error) {
	claims, err := parseHMAC(secret, tokenStr)
	if err != nil {
		return "", err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// GenerateConfirmToken binds an explicit user confirmation to the exact
// transfer it approved. Submitting a transfer requires presenting this
// token with matching fields; skipping the confirmation step is a defect.
func GenerateConfirmToken(secret []byte, userID string, req domain.TransferRequest, amount decimal.Decimal, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"purpose": confirmPurpose,
		"user_id": userID,
		"from":    req.FromAccountID,
		"to":      req.ToAccountID,
		"amount":  amount.String(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// VerifyConfirmToken checks that the token was issued to this user for this
// exact from/to/amount combination.
func VerifyConfirmToken(secret []byte, tokenStr, userID string, req domain.TransferRequest, amount decimal.Decimal) error {
	claims, err := parseHMAC(secret, tokenStr)
	if err != nil {
		return err
	}
	if claims["purpose"] != confirmPurpose {
		return ErrInvalidToken
	}

	tokenAmount, err := decimal.NewFromString(str(claims["amount"]))
	if err != nil {
		return ErrConfirmMismatch
	}
	if str(claims["user_id"]) != userID ||
		str(claims["from"]) != req.FromAccountID ||
		str(claims["to"]) != req.ToAccountID ||
		!tokenAmount.Equal(amount) {
		return ErrConfirmMismatch
	}
	return nil
}

func parseHMAC(secret []byte, tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
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

func str(v any) string {
	s, _ := v.(string)
	return s
}
