package memory

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// ArtworksDump - формат файла локального кэша:
//
//	{ "artworks": [ ... ] }
type ArtworksDump struct {
	Artworks []models.Artwork `json:"artworks"`
}

// DefaultArtworksPath возвращает путь по умолчанию для файла кэша:
//
//	$HOME/.artfolio/artworks.json
func DefaultArtworksPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".artfolio", "artworks.json"), nil
}

// SaveToFile сохраняет store в JSON-файл.
//
// Директория создаётся с правами 0700, файл пишется с правами 0600.
// Работы в файле идут новыми первыми.
func SaveToFile(path string, store *ArtworksStore) error {
	out := ArtworksDump{Artworks: store.List(nil)}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// LoadFromFile загружает кэш из JSON-файла в store.
//
// Файла нет - не ошибка (первый запуск). При успехе содержимое store
// заменяется полностью.
func LoadFromFile(path string, store *ArtworksStore) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var dump ArtworksDump
	if err := json.Unmarshal(b, &dump); err != nil {
		return err
	}

	store.ReplaceAll(dump.Artworks)
	return nil
}
