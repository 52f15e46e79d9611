package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/service"
)

// ProjectHandler はプロジェクト一覧の HTTP ハンドラ
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler は ProjectHandler を生成する
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type projectErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// List は GET /api/projects を処理する。
// フロントエンドとの互換のため、エンベロープなしの配列をそのまま返す。
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		slog.Error("list projects failed", "source", h.projectService.Source(), "error", err)
		resp := projectErrorResponse{Message: "Failed to fetch projects", Error: err.Error()}
		var upErr *service.UpstreamFetchError
		if errors.As(err, &upErr) {
			resp.Message = "Failed to fetch projects from GitHub"
			resp.Error = upErr.Err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}
