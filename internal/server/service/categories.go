package service

import (
	"context"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// CategoriesService - справочник категорий, общий для всех пользователей.
type CategoriesService struct {
	repo CategoriesRepo
}

func NewCategoriesService(repo CategoriesRepo) *CategoriesService {
	return &CategoriesService{repo: repo}
}

// List возвращает все категории, отсортированные по имени.
func (s *CategoriesService) List(ctx context.Context) ([]models.Category, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Category{}
	}
	return list, nil
}
