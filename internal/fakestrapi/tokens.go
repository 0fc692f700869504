package fakestrapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// Claims mirrors the token the backend issues: the user id plus the
// registered iat/exp claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"id"`
}

func (s *Server) issueToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
		UserID: userID,
	})
	return token.SignedString(s.opts.Secret)
}

func (s *Server) verifyToken(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errInvalidToken
	}
	return claims.UserID, nil
}

// IssueToken mints a token for userID the same way login does. Tests use it
// to build sessions without a login round trip.
func (s *Server) IssueToken(userID int) (string, error) {
	return s.issueToken(userID)
}
