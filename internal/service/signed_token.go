package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// SignedTokenIssuer emite y decodifica tokens firmados de un solo proposito
// (activacion de cuenta y reset de password). El token solo lleva el id del
// usuario y la expiracion; ambos flujos comparten la misma forma.
type SignedTokenIssuer struct {
	secret []byte
	now    func() time.Time
}

type signedTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewSignedTokenIssuer(secret string) *SignedTokenIssuer {
	return &SignedTokenIssuer{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj del issuer; permite probar expiracion
// sin esperar tiempo real.
func (i *SignedTokenIssuer) WithClock(now func() time.Time) *SignedTokenIssuer {
	if now != nil {
		i.now = now
	}
	return i
}

// Issue firma un token que liga el id del usuario con una expiracion.
func (i *SignedTokenIssuer) Issue(userID string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrTokenInvalid
	}
	now := i.now()
	claims := signedTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Decode verifica firma y expiracion y devuelve el id del usuario.
// Devuelve ErrTokenExpired y ErrTokenInvalid como fallas distinguibles
// porque cada una se traduce a un mensaje distinto para el usuario.
func (i *SignedTokenIssuer) Decode(tokenString string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrTokenInvalid
	}
	var claims signedTokenClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
