package videocall

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token roles mirror the video platform's permission tiers: moderators can
// manage the session, publishers can only send and receive media.
const (
	TokenRoleModerator = "moderator"
	TokenRolePublisher = "publisher"
)

// TokenIssuer mints HMAC-signed client tokens for joining a session.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// ClientClaims is the payload carried by a video client token.
type ClientClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sessionId"`
	TokenRole string `json:"tokenRole"`
	Data      string `json:"data,omitempty"`
}

type tokenData struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// Issue mints a token tied to one session, good for the issuer's TTL.
func (i *TokenIssuer) Issue(sessionID, tokenRole, userID, userRole, name string) (string, error) {
	data, err := json.Marshal(tokenData{UserID: userID, Role: userRole, Name: name})
	if err != nil {
		return "", fmt.Errorf("videocall: marshal token data: %w", err)
	}

	now := time.Now()
	claims := ClientClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		SessionID: sessionID,
		TokenRole: tokenRole,
		Data:      string(data),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("videocall: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a client token.
func (i *TokenIssuer) Verify(tokenString string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("videocall: parse token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
