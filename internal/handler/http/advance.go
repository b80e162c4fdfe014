package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdvanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type advanceHandlerImpl struct {
	advanceService advance.AdvanceService
}

func NewAdvanceHandler(advanceService advance.AdvanceService) AdvanceHandler {
	return &advanceHandlerImpl{advanceService: advanceService}
}

// List implements AdvanceHandler.
func (h *advanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := advance.AdvanceFilter{
		EmployeeID: optionalQuery(query, "employee_id"),
		Month:      intQuery(query, "month", 0),
		Year:       intQuery(query, "year", 0),
		Page:       intQuery(query, "page", 1),
		Limit:      intQuery(query, "limit", 20),
	}

	result, err := h.advanceService.ListAdvances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AdvanceHandler.
func (h *advanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.advanceService.GetAdvance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements AdvanceHandler.
func (h *advanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req advance.CreateAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateAdvance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.advanceService.CreateAdvance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary advance recorded", result)
}

// Delete implements AdvanceHandler.
func (h *advanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.advanceService.DeleteAdvance(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary advance deleted", nil)
}
