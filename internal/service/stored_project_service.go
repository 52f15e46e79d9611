package service

import (
	"context"
	"fmt"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
)

type storedProjectService struct {
	repo repository.ProjectRepository
}

// NewStoredProjectService creates a ProjectService backed by the projects table.
func NewStoredProjectService(repo repository.ProjectRepository) ProjectService {
	return &storedProjectService{repo: repo}
}

func (s *storedProjectService) Source() model.ProjectSource {
	return model.SourceDatabase
}

// List returns featured projects first, then newest first.
func (s *storedProjectService) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored projects: %w", err)
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return projects, nil
}
