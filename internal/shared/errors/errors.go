// Package errors содержит общие доменные ошибки приложения
// и утилиты для error wrapping.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на HTTP-статусы в api слое.
package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Входные данные невалидны (пустые поля, неправильный формат и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Неверные учётные данные. Одна ошибка и для "нет такого email", и для "неверный пароль"
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Неавторизован
	ErrUnauthorized = errors.New("unauthorized")
	// Токен не прошёл проверку (подпись, формат, срок жизни)
	ErrInvalidToken = errors.New("invalid token")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден. Чужие записи тоже отдаются как not found
	ErrNotFound = errors.New("not found")
)

// только для картинок
var (
	ErrImageType     = errors.New("only image files are allowed")
	ErrImageTooLarge = errors.New("image is too large")
	ErrBadFilename   = errors.New("bad image filename")
)

// ValidationError - ошибка валидации с детализацией по полям.
//
// errors.Is(err, ErrInvalidInput) для неё возвращает true,
// поэтому api слой маппит её на 400 тем же кейсом, что и обычный ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создаёт ошибку валидации для одного поля.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add добавляет сообщение для поля и возвращает саму ошибку (удобно в цепочках).
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// Empty сообщает, что ни одно поле не провалило проверку.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
