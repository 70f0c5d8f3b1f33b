// Package crypto содержит криптографические примитивы,
// используемые сервером artfolio.
//
// В частности, пакет отвечает за:
//   - выпуск и проверку JWT токенов доступа (HS256, фиксированный TTL);
//   - хэширование паролей (argon2id или bcrypt).
//
// Refresh токенов нет: после истечения TTL пользователь логинится заново.
package crypto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// DefaultAccessTTL - срок жизни токена, если в конфиге ничего не задано.
const DefaultAccessTTL = time.Hour

// JWTConfig описывает параметры генерации JWT токена.
type JWTConfig struct {
	// Issuer - значение поля iss (кто выдал токен). Пустое значение не проверяется.
	Issuer string
	// Audience - значение поля aud. Пустое значение не проверяется.
	Audience string
	// SigningKey - секретный ключ для подписи токена (HS256).
	SigningKey string
	// AccessTTL - срок жизни токена.
	AccessTTL time.Duration
}

// Claims - полезная нагрузка токена: {userId, sub, iat, exp}.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет токены доступа.
//
// Сервис stateless: никаких сессий на сервере, владение валидным
// и не просроченным токеном - единственное основание для доступа.
type TokenService struct {
	cfg JWTConfig
	now func() time.Time
}

// NewTokenService создаёт сервис токенов.
//
// Пустой ключ подписи - ошибка: сервер не должен стартовать без подписи.
func NewTokenService(cfg JWTConfig) (*TokenService, error) {
	return NewTokenServiceWithClock(cfg, time.Now)
}

// NewTokenServiceWithClock - то же самое, но с подменяемыми часами (для тестов TTL).
func NewTokenServiceWithClock(cfg JWTConfig, now func() time.Time) (*TokenService, error) {
	if strings.TrimSpace(cfg.SigningKey) == "" {
		return nil, errors.New("jwt signing key is not configured")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{cfg: cfg, now: now}, nil
}

// TTL возвращает срок жизни выпускаемых токенов.
func (s *TokenService) TTL() time.Duration {
	return s.cfg.AccessTTL
}

// Issue создаёт и подписывает токен для пользователя.
//
// Токен содержит:
//   - userId
//   - sub (тот же id строкой)
//   - iat / exp (exp = iat + TTL)
//   - iss / aud, если заданы в конфиге
func (s *TokenService) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", serr.ErrInvalidInput
	}
	now := s.now()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, формат и срок жизни токена и возвращает userId.
//
// Любая проблема (чужая подпись, битый токен, истёкший exp, не тот iss/aud)
// возвращается как serr.ErrInvalidToken - наружу детали не нужны.
func (s *TokenService) Verify(token string) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.SigningKey), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", serr.ErrInvalidToken, err)
	}

	if claims.UserID <= 0 {
		return 0, serr.ErrInvalidToken
	}
	// sub и userId должны совпадать, иначе токен собран руками
	if claims.Subject != "" && claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return 0, serr.ErrInvalidToken
	}
	return claims.UserID, nil
}
