// Package config содержит функции для работы с локальной конфигурацией CLI-клиента.
//
// Конфигурация хранит сессию (токен и email) и размещается
// в домашней директории пользователя в файле:
//
//	~/.artfolio/credentials.json
//
// Пакет предоставляет функции для получения путей по умолчанию, загрузки и сохранения
// конфигурации в JSON формате, а также адрес сервера из окружения.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// EnvBaseURL - переменная окружения с адресом сервера.
const EnvBaseURL = "ARTFOLIO_API_BASE_URL"

// EnvImagesURL - базовый URL картинок, если сервер отдаёт их не по /images.
const EnvImagesURL = "ARTFOLIO_IMAGES_BASE_URL"

// DirName - каталог клиента в домашней директории.
const DirName = ".artfolio"

// Credentials - сессия CLI-клиента.
//
// Token передаётся в каждый запрос к защищённым эндпоинтам.
// Email нужен только для вывода "кто залогинен".
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// LoggedIn - есть ли сохранённый токен.
func (c *Credentials) LoggedIn() bool {
	return c != nil && c.Token != ""
}

// Clear забывает сессию.
func (c *Credentials) Clear() {
	c.Token = ""
	c.Email = ""
}

// Dir возвращает <home>/.artfolio.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath возвращает путь к файлу сессии:
//
//	<home>/.artfolio/credentials.json
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// BaseURLFromEnv возвращает адрес сервера из ARTFOLIO_API_BASE_URL или fallback.
func BaseURLFromEnv(fallback string) string {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		return v
	}
	return fallback
}

// ImagesURLFromEnv возвращает ARTFOLIO_IMAGES_BASE_URL или "".
func ImagesURLFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvImagesURL))
}

// Load загружает конфигурацию из указанного файла.
//
// Если файл не существует, возвращает пустую конфигурацию без ошибки.
// Если файл существует, но содержит некорректный JSON, возвращает ошибку.
func Load(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// дефолтный конфиг, если файла нет
			return &Credentials{}, nil
		}
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save сохраняет конфигурацию в указанный файл в JSON формате.
//
// При необходимости создаёт директорию назначения с правами 0700.
// Файл конфигурации записывается с правами 0600.
func Save(path string, c *Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return err
	}
	// WriteFile не меняет права уже существующего файла
	return os.Chmod(path, 0o600)
}
