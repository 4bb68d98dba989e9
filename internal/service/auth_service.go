package service

import (
	"errors"
	"time"

	"benevita/internal/config"
	apperr "benevita/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the boundary glue that issues the signed identity the rest
// of the core trusts. Everything downstream only ever sees the token's
// actor id and role.
type AuthService interface {
	Login(email, password string) (string, string, error)
}

type authService struct {
	accounts AccountStore
}

func NewAuthService(accounts AccountStore) AuthService {
	return &authService{accounts: accounts}
}

func (s *authService) Login(email, password string) (string, string, error) {
	account, err := s.accounts.GetAccountByEmail(email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", "", apperr.ErrForbidden
		}
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", "", apperr.ErrForbidden
	}

	secret := config.AppConfig.JWTSecret
	if secret == "" {
		return "", "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"sub":  account.ID,
		"role": account.Role,
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return signed, account.Role, nil
}
