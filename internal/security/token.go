package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid state token")
	ErrExpiredToken = errors.New("state token has expired")
)

// ModalStateClaims carries the context a modal needs to hand back on
// submission: which registration the form targets, who opened it, and which
// message to edit with the result. The token is opaque to the chat platform.
type ModalStateClaims struct {
	RegistrationID  string `json:"registration_id"`
	ActorID         string `json:"actor_id"`
	ActorName       string `json:"actor_name"`
	OriginChannel   string `json:"origin_channel"`
	OriginMessageTS string `json:"origin_message_ts"`
	jwt.RegisteredClaims
}

type StateTokenManager interface {
	GenerateModalState(claims ModalStateClaims) (string, error)
	ValidateModalState(token string) (*ModalStateClaims, error)
}

type stateTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewStateTokenManager(secret string, ttl time.Duration) StateTokenManager {
	return &stateTokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *stateTokenManager) GenerateModalState(claims ModalStateClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.RegistrationID,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "partnernet-gateway",
		Audience:  jwt.ClaimStrings{"modal-state"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *stateTokenManager) ValidateModalState(tokenString string) (*ModalStateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ModalStateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ModalStateClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
