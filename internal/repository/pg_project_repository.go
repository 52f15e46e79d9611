package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// ProjectRepository は DB に保存されたプロジェクトの永続化インターフェース
type ProjectRepository interface {
	List(ctx context.Context) ([]*model.Project, error)
	// ReplaceAll は既存のプロジェクトを全削除し、与えられたプロジェクトを挿入する
	ReplaceAll(ctx context.Context, projects []*model.Project) error
}

// PgProjectRepository は ProjectRepository の PostgreSQL 実装
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository は PgProjectRepository を生成する
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

var _ ProjectRepository = (*PgProjectRepository)(nil)

// List はおすすめ順、作成日の新しい順でプロジェクト一覧を取得する
func (r *PgProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, technologies, image, github_link, live_link, category, featured, created_at
		 FROM projects ORDER BY featured DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p := model.Project{Source: model.SourceDatabase}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Technologies, &p.Image,
			&p.GitHubLink, &p.LiveLink, &p.Category, &p.Featured, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// ReplaceAll は 1 トランザクションで全件入れ替える。1 件でも検証に失敗した場合は何も変更しない。
func (r *PgProjectRepository) ReplaceAll(ctx context.Context, projects []*model.Project) error {
	for _, p := range projects {
		if p.Category == "" {
			p.Category = model.CategoryWeb
		}
		if err := validateRecord(p); err != nil {
			return fmt.Errorf("project %q: %w", p.Title, err)
		}
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM projects`); err != nil {
			return fmt.Errorf("clear projects: %w", err)
		}
		for _, p := range projects {
			p.ID = uuid.New().String()
			p.Source = model.SourceDatabase
			if p.Technologies == nil {
				p.Technologies = []string{}
			}
			err := tx.QueryRow(ctx,
				`INSERT INTO projects (id, title, description, technologies, image, github_link, live_link, category, featured)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				 RETURNING created_at`,
				p.ID, p.Title, p.Description, p.Technologies, p.Image, p.GitHubLink, p.LiveLink, p.Category, p.Featured,
			).Scan(&p.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert project %q: %w", p.Title, err)
			}
		}
		return nil
	})
}
