package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-github/v62/github"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/metrics"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

const (
	noDescription = "No description available"
	maxTopics     = 5
)

// cardPalette holds the color pairs used for generated project images.
var cardPalette = []string{
	"667eea,764ba2", // purple
	"00d4ff,00a8cc", // cyan
	"f093fb,f5576c", // pink
	"4facfe,00f2fe", // blue
	"43e97b,38f9d7", // green
}

// RepositoryLister is the upstream source of repositories.
type RepositoryLister interface {
	ListRepositories(ctx context.Context) ([]*github.Repository, error)
	Username() string
}

type githubProjectService struct {
	lister RepositoryLister
}

// NewGitHubProjectService creates a ProjectService that derives projects from
// the account's public, non-fork repositories.
func NewGitHubProjectService(lister RepositoryLister) ProjectService {
	return &githubProjectService{lister: lister}
}

func (s *githubProjectService) Source() model.ProjectSource {
	return model.SourceGitHub
}

// List fetches the repositories once (no retry, no partial result), drops
// forks and private repositories, and returns them newest-updated first.
func (s *githubProjectService) List(ctx context.Context) ([]*model.Project, error) {
	if s.lister.Username() == "" {
		metrics.UpstreamFetchesTotal.WithLabelValues("error").Inc()
		return nil, &UpstreamFetchError{Err: errors.New("github username is not configured")}
	}

	start := time.Now()
	repos, err := s.lister.ListRepositories(ctx)
	metrics.UpstreamFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamFetchesTotal.WithLabelValues("error").Inc()
		return nil, &UpstreamFetchError{Err: err}
	}
	metrics.UpstreamFetchesTotal.WithLabelValues("ok").Inc()

	projects := make([]*model.Project, 0, len(repos))
	for _, repo := range repos {
		if repo == nil || repo.GetFork() || repo.GetPrivate() {
			continue
		}
		projects = append(projects, projectFromRepository(repo, len(projects)))
	}

	slices.SortStableFunc(projects, func(a, b *model.Project) int {
		return b.UpdatedAt.Compare(*a.UpdatedAt)
	})
	return projects, nil
}

// projectFromRepository maps a repository at position index of the filtered list.
func projectFromRepository(repo *github.Repository, index int) *model.Project {
	description := repo.GetDescription()
	if description == "" {
		description = noDescription
	}

	var liveLink *string
	if home := repo.GetHomepage(); home != "" {
		liveLink = &home
	}

	updatedAt := repo.GetUpdatedAt().Time
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return &model.Project{
		Source:       model.SourceGitHub,
		ID:           fmt.Sprint(repo.GetID()),
		Title:        formatRepoName(repo.GetName()),
		Description:  description,
		Technologies: extractTechnologies(repo.GetLanguage(), topics),
		Image:        projectImage(repo.GetName(), index),
		GitHubLink:   repo.GetHTMLURL(),
		LiveLink:     liveLink,
		CreatedAt:    repo.GetCreatedAt().Time,
		Stars:        repo.GetStargazersCount(),
		Forks:        repo.GetForksCount(),
		Language:     repo.GetLanguage(),
		UpdatedAt:    &updatedAt,
		Topics:       topics,
	}
}

// formatRepoName turns "my-cool_repo" into "My Cool Repo". Only the first
// letter of each word changes case.
func formatRepoName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	words := strings.Split(name, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// extractTechnologies returns the primary language followed by up to five
// topics, without duplicates, in first-seen order.
func extractTechnologies(language string, topics []string) []string {
	techs := make([]string, 0, 1+maxTopics)
	seen := make(map[string]bool)
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		techs = append(techs, t)
	}

	add(language)
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	for _, t := range topics {
		add(t)
	}
	return techs
}

// projectImage builds a placeholder image URL whose colors cycle through
// cardPalette by index.
func projectImage(repoName string, index int) string {
	colors := cardPalette[index%len(cardPalette)]
	return fmt.Sprintf("https://via.placeholder.com/400x200/%s/ffffff?text=%s", colors, url.QueryEscape(repoName))
}
