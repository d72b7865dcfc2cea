package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/routeweaver/routeweaver/internal/api/models"
	"github.com/routeweaver/routeweaver/internal/api/response"
	"github.com/routeweaver/routeweaver/internal/history"
)

// DefaultHistoryPageSize bounds unpaginated history listings.
const DefaultHistoryPageSize = 20

// HistoryHandler handles solve history endpoints.
type HistoryHandler struct {
	repo history.Repository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(repo history.Repository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// ListSolves handles GET /v1/solves.
func (h *HistoryHandler) ListSolves(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.BadRequest(w, r, "invalid limit", []models.FieldError{
				{Field: "limit", Message: "must be an integer between 1 and 100"},
			})
			return
		}
		limit = parsed
	}

	result, err := h.repo.List(r.Context(), history.ListOptions{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		response.InternalError(w, r, "failed to list solve history")
		return
	}

	items := make([]models.SolveRecord, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, toAPIRecord(rec))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, models.PagedSolveRecords{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	})
}

// GetSolve handles GET /v1/solves/{solveId}.
func (h *HistoryHandler) GetSolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "solveId")

	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrRecordNotFound) {
			response.NotFound(w, r, "solve record not found")
			return
		}
		response.InternalError(w, r, "failed to load solve record")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIRecord(rec))
}

func toAPIRecord(rec *history.SolveRecord) models.SolveRecord {
	return models.SolveRecord{
		ID:            rec.ID,
		Profile:       rec.Profile,
		LocationCount: rec.LocationCount,
		VehicleCount:  rec.VehicleCount,
		JobCount:      rec.JobCount,
		SentinelCells: rec.SentinelCells,
		Unassigned:    rec.Unassigned,
		SolverCode:    rec.SolverCode,
		TotalCost:     rec.TotalCost,
		CreatedAt:     rec.CreatedAt,
	}
}
