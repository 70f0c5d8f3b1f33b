// Package memory - локальный кэш работ для CLI.
//
// Кэш заполняется командой sync и позволяет смотреть работы без сети
// (list --local, get --local). Источник правды всегда сервер.
package memory

import (
	"sort"
	"sync"

	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// ArtworksStore - потокобезопасное in-memory хранилище работ.
//
// Используется CLI для:
//   - выдачи работы по ID (Get)
//   - списка работ, новые первыми (List)
//   - полной замены локального состояния после sync (ReplaceAll)
//   - точечного обновления после create/update (Put)
//   - удаления (Delete)
type ArtworksStore struct {
	mu       sync.RWMutex
	artworks map[int64]models.Artwork
}

// NewArtworks создаёт пустое хранилище.
func NewArtworks() *ArtworksStore {
	return &ArtworksStore{
		artworks: make(map[int64]models.Artwork),
	}
}

// Get возвращает работу по ID или serr.ErrNotFound.
func (s *ArtworksStore) Get(id int64) (models.Artwork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artworks[id]
	if !ok {
		return models.Artwork{}, serr.ErrNotFound
	}
	return a, nil
}

// ReplaceAll полностью заменяет содержимое стора.
//
// Дубликаты по ID: побеждает последний.
func (s *ArtworksStore) ReplaceAll(list []models.Artwork) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artworks = make(map[int64]models.Artwork, len(list))
	for _, a := range list {
		s.artworks[a.ID] = a
	}
}

// Put добавляет или заменяет одну работу.
func (s *ArtworksStore) Put(a models.Artwork) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artworks[a.ID] = a
}

// List возвращает работы, новые первыми (по убыванию ID).
// categoryID != nil - только работы этой категории.
func (s *ArtworksStore) List(categoryID *int64) []models.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Artwork, 0, len(s.artworks))
	for _, a := range s.artworks {
		if categoryID != nil && (a.CategoryID == nil || *a.CategoryID != *categoryID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Len - количество работ в кэше.
func (s *ArtworksStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artworks)
}

// Delete удаляет работу по ID. Отсутствующая - serr.ErrNotFound.
func (s *ArtworksStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artworks[id]; !ok {
		return serr.ErrNotFound
	}
	delete(s.artworks, id)
	return nil
}
