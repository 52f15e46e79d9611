package service

import (
	"context"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// ProjectService はポートフォリオのプロジェクト一覧を返すインターフェース。
// 実装はデプロイごとに GitHub 由来か DB 由来のどちらか一方を選ぶ。
type ProjectService interface {
	List(ctx context.Context) ([]*model.Project, error)
	Source() model.ProjectSource
}
