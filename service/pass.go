package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
)

var (
	// ErrEmailTaken means a pass already exists for the email.
	ErrEmailTaken = errors.New("a pass is already registered for this email")
	// ErrPassMismatch covers both unknown pass ids and wrong secrets so a
	// caller cannot probe which field failed.
	ErrPassMismatch = errors.New("pass id or secret is incorrect")
)

const passIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newPassID returns an id of the form SVP-<year>-XXXX-XXXX. Generated ids
// are not re-checked for collisions; at demo scale the 36^8 space makes a
// clash a curiosity, and the conditional create surfaces it as a 409 anyway.
func newPassID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	chars := make([]byte, 8)
	for i, b := range buf {
		chars[i] = passIDAlphabet[int(b)%len(passIDAlphabet)]
	}
	return fmt.Sprintf("SVP-%d-%s-%s", time.Now().Year(), chars[:4], chars[4:]), nil
}

func avatarURL(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// MintPass registers a new retreat pass. The email must be unused; the
// secret is stored as given, plaintext by contract.
func (s *Service) MintPass(ctx context.Context, name, email, secret string) (models.Pass, error) {
	if err := ValidatePassFields(name, email, secret); err != nil {
		return models.Pass{}, err
	}

	if _, err := s.Store.GetPassByEmail(ctx, email); err == nil {
		return models.Pass{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrItemNotFound) {
		return models.Pass{}, err
	}

	passID, err := newPassID()
	if err != nil {
		return models.Pass{}, err
	}

	pass := models.Pass{
		ID:        passID,
		Name:      name,
		Email:     email,
		Secret:    secret,
		CreatedAt: time.Now().UnixMilli(),
		Avatar:    avatarURL(name),
	}

	created, err := s.Store.CreatePass(ctx, pass)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Pass{}, ErrEmailTaken
		}
		return models.Pass{}, err
	}

	return created, nil
}

// VerifyPass checks an id/secret pair and, on success, returns the pass
// together with a signed session token.
func (s *Service) VerifyPass(ctx context.Context, passID, secret string) (models.Pass, string, error) {
	pass, err := s.Store.GetPass(ctx, passID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Pass{}, "", ErrPassMismatch
		}
		return models.Pass{}, "", err
	}

	if pass.Secret != secret {
		return models.Pass{}, "", ErrPassMismatch
	}

	token, err := s.CreateJWT(pass.ID)
	if err != nil {
		return models.Pass{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return pass, token, nil
}

// ResetSecret replaces a pass secret when the id/email pair matches. A
// mismatched pair returns false without touching the record.
func (s *Service) ResetSecret(ctx context.Context, passID, email, newSecret string) (bool, error) {
	if err := ValidateSecret(newSecret); err != nil {
		return false, err
	}

	pass, err := s.Store.GetPass(ctx, passID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}
	if pass.Email != email {
		return false, nil
	}

	if err := s.Store.UpdatePassSecret(ctx, passID, newSecret); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) CreateJWT(passID string) (string, error) {
	claims := jwt.MapClaims{
		"passId": passID,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	passID, ok := claims["passId"].(string)
	if !ok {
		return "", errors.New("missing passId claim")
	}

	return passID, nil
}

// PassFromToken resolves a session token back to its pass record.
func (s *Service) PassFromToken(ctx context.Context, token string) (models.Pass, error) {
	if len(token) == 0 {
		return models.Pass{}, errors.New("token not provided")
	}

	passID, err := s.VerifyJWT(token)
	if err != nil {
		return models.Pass{}, err
	}

	pass, err := s.Store.GetPass(ctx, passID)
	if err != nil {
		return models.Pass{}, err
	}

	return pass, nil
}
