package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/crypto"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// Ограничения на учётные данные.
const (
	MinPasswordLen = 8
	// bcrypt молча обрезает всё после 72 байт
	MaxPasswordBytes = 72
	MaxEmailLen      = 254
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService реализует регистрацию и вход.
//
// Ответственность:
//   - регистрация пользователей (email + соленый хэш пароля)
//   - аутентификация и выпуск токена доступа
//
// Сессий на сервере нет: токен самодостаточен, refresh не поддерживается.
type AuthService struct {
	users  UsersRepo
	tokens TokenIssuer
	pass   crypto.PasswordParams

	// хэш случайного пароля: сверяемся с ним, когда email не найден,
	// чтобы время ответа не выдавало существование аккаунта
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создаёт AuthService с зависимостями и настройками из конфига.
func NewAuthService(users UsersRepo, tokens TokenIssuer, cfg *config.Config) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		pass: crypto.PasswordParams{
			Hasher: cfg.Password.Hasher,
			Argon2: crypto.Argon2Params{
				Time:      cfg.Password.Argon2.Time,
				MemoryKiB: cfg.Password.Argon2.MemoryKiB,
				Threads:   cfg.Password.Argon2.Threads,
				KeyLen:    cfg.Password.Argon2.KeyLen,
				SaltLen:   cfg.Password.Argon2.SaltLen,
			},
			BcryptCost: cfg.Password.Bcrypt.Cost,
		},
	}
}

// NormalizeEmail обрезает пробелы и приводит email к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register регистрирует нового пользователя.
//
// Валидация:
//   - email обязателен и должен быть валидным
//   - пароль обязателен, длиной >= 8 символов и не длиннее 72 байт
//
// Возвращает:
//   - id пользователя
//   - *serr.ValidationError при некорректных данных или ErrAlreadyExists если email уже зарегистрирован
func (s *AuthService) Register(ctx context.Context, email, password string) (int64, error) {
	email = NormalizeEmail(email)

	verr := &serr.ValidationError{}
	switch {
	case email == "":
		verr.Add("email", "Email is required")
	case len(email) > MaxEmailLen || !emailRe.MatchString(email):
		verr.Add("email", "Invalid email")
	}
	switch {
	case password == "":
		verr.Add("password", "Password is required")
	case utf8.RuneCountInString(password) < MinPasswordLen:
		verr.Add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLen))
	case len(password) > MaxPasswordBytes:
		verr.Add("password", fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	if !verr.Empty() {
		return 0, verr
	}

	hash, err := crypto.HashPassword(password, s.pass)
	if err != nil {
		return 0, fmt.Errorf("%w: hash password: %v", serr.ErrInternal, err)
	}
	return s.users.Create(ctx, email, hash)
}

// SignIn аутентифицирует пользователя и выдаёт токен доступа.
//
// Поведение:
//   - не раскрывает факт существования email: нет пользователя и неверный пароль
//     дают одну и ту же ErrInvalidCredentials
//
// Ошибки:
//   - ErrInvalidCredentials
//   - ErrInternal
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", serr.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			_, _ = crypto.VerifyPassword(password, s.dummy())
			return "", serr.ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("%w: verify password: %v", serr.ErrInternal, err)
	}
	if !ok {
		return "", serr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", serr.ErrInternal, err)
	}
	return token, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = crypto.HashPassword("not-a-real-password", s.pass)
	})
	return s.dummyHash
}
