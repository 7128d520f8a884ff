// Package clerkauth проверяет JWT-токены, выданные Clerk.
//
// Verifier разбирает bearer-токен, находит ключ подписи по kid в JWKS
// по адресу <домен Clerk>/.well-known/jwks.json и проверяет подпись RS256
// и срок действия. Audience не проверяется: Clerk не проставляет его
// для session-токенов.
package clerkauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

var (
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid — токен не разбирается или подпись не сошлась.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrClientUnavailable — JWKS недоступен или домен Clerk не задан.
	ErrClientUnavailable = errors.New("jwks client unavailable")
)

// Claims — интересующие нас поля session-токена Clerk.
// Subject содержит идентификатор пользователя.
type Claims struct {
	Email                string `json:"email"`
	jwt.RegisteredClaims        // стандартные поля (sub, exp, iat и пр.)
}

// Verifier проверяет токены против JWKS Clerk.
// Набор ключей кэшируется и обновляется jwk.Cache, поэтому ротация
// ключей на стороне Clerk не требует рестарта сервиса.
type Verifier struct {
	jwksURL string
	cache   *jwk.Cache
}

// New создаёт Verifier для заданного домена Clerk.
// Домен без схемы дополняется до https. Пустой домен — ошибка конфигурации.
func New(ctx context.Context, clerkDomain string) (*Verifier, error) {
	const op = "clerkauth.New"

	if clerkDomain == "" {
		return nil, fmt.Errorf("%s: clerk domain is not set: %w", op, ErrClientUnavailable)
	}
	if !strings.HasPrefix(clerkDomain, "http") {
		clerkDomain = "https://" + clerkDomain
	}
	jwksURL := clerkDomain + "/.well-known/jwks.json"

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Verifier{
		jwksURL: jwksURL,
		cache:   cache,
	}, nil
}

// Verify проверяет токен и возвращает его claims.
// Ошибки различимы через errors.Is: ErrTokenExpired, ErrTokenInvalid,
// ErrClientUnavailable.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	const op = "clerkauth.Verify"

	set, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch jwks: %w: %w", op, ErrClientUnavailable, err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, errors.New("no key id in token header")
		}
		key, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("signing key %q not found in jwks", kid)
		}
		var rawKey any
		if err := key.Raw(&rawKey); err != nil {
			return nil, fmt.Errorf("extract raw key: %w", err)
		}
		return rawKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}
	return claims, nil
}
