// Package jwt emite y valida los access tokens HS256 de la API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrMissingSecret = errors.New("jwt secret not configured")
)

// Claims del access token. sub = user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtv5.RegisteredClaims
}

// Issuer firma y valida tokens con un secreto compartido.
type Issuer struct {
	Iss       string
	AccessTTL time.Duration

	secret []byte
	now    func() time.Time
}

func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		Iss:       iss,
		AccessTTL: ttl,
		secret:    []byte(secret),
		now:       time.Now,
	}, nil
}

// Issue firma un access token para el usuario. Devuelve token y expiración.
func (i *Issuer) Issue(userID, email, role string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.AccessTTL)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.Iss,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign: %w", err)
	}
	return signed, exp, nil
}

// Parse valida firma (sólo HS256), exp/nbf con 30s de tolerancia e iss si está configurado.
func (i *Issuer) Parse(token string) (*Claims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(30 * time.Second),
		jwtv5.WithTimeFunc(i.now),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}

	var claims Claims
	tok, err := jwtv5.ParseWithClaims(token, &claims, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenInvalidIssuer) {
			return nil, ErrInvalidIssuer
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
