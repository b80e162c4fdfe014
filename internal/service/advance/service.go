package advance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/shopspring/decimal"
)

type AdvanceServiceImpl struct {
	advance.AdvanceRepository
	employeeRepo employee.EmployeeRepository
	publisher    realtime.Publisher
}

func NewAdvanceService(advanceRepository advance.AdvanceRepository, employeeRepo employee.EmployeeRepository, publisher realtime.Publisher) advance.AdvanceService {
	return &AdvanceServiceImpl{
		AdvanceRepository: advanceRepository,
		employeeRepo:      employeeRepo,
		publisher:         publisher,
	}
}

// CreateAdvance implements advance.AdvanceService.
func (s *AdvanceServiceImpl) CreateAdvance(ctx context.Context, req advance.CreateAdvanceRequest) (advance.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return advance.AdvanceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return advance.AdvanceResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	newAdvance := advance.Advance{
		EmployeeID: emp.ID,
		Amount:     req.Amount.Round(2),
		Date:       date,
		Reason:     req.Reason,
	}
	if sess, ok := session.FromContext(ctx); ok {
		newAdvance.CreatedBy = &sess.UserID
	}

	created, err := s.AdvanceRepository.Create(ctx, newAdvance)
	if err != nil {
		return advance.AdvanceResponse{}, fmt.Errorf("failed to create salary advance: %w", err)
	}
	created.EmployeeName = &emp.FullName
	created.EmployeeMatricule = &emp.Matricule

	s.publish(ctx, realtime.ActionInsert, created.ID)
	return mapAdvanceToResponse(created), nil
}

// GetAdvance implements advance.AdvanceService.
func (s *AdvanceServiceImpl) GetAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	a, err := s.AdvanceRepository.GetByID(ctx, id)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}
	return mapAdvanceToResponse(a), nil
}

// ListAdvances implements advance.AdvanceService.
func (s *AdvanceServiceImpl) ListAdvances(ctx context.Context, filter advance.AdvanceFilter) (advance.ListAdvanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return advance.ListAdvanceResponse{}, err
	}

	advances, total, err := s.AdvanceRepository.List(ctx, filter)
	if err != nil {
		return advance.ListAdvanceResponse{}, fmt.Errorf("failed to list salary advances: %w", err)
	}

	totalAmount := decimal.Zero
	responses := make([]advance.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		totalAmount = totalAmount.Add(a.Amount)
		responses = append(responses, mapAdvanceToResponse(a))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return advance.ListAdvanceResponse{
		TotalCount:  total,
		TotalAmount: totalAmount,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Advances:    responses,
	}, nil
}

// DeleteAdvance implements advance.AdvanceService.
func (s *AdvanceServiceImpl) DeleteAdvance(ctx context.Context, id string) error {
	if err := s.AdvanceRepository.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionDelete, id)
	return nil
}

func (s *AdvanceServiceImpl) publish(ctx context.Context, action realtime.Action, id string) {
	if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableAdvances, action, id)); err != nil {
		slog.Warn("failed to publish advance change", "action", action, "id", id, "error", err)
	}
}

func mapAdvanceToResponse(a advance.Advance) advance.AdvanceResponse {
	resp := advance.AdvanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Amount:     a.Amount,
		Date:       a.Date.Format("2006-01-02"),
		Reason:     a.Reason,
		CreatedBy:  a.CreatedBy,
	}
	if a.EmployeeName != nil {
		resp.EmployeeName = *a.EmployeeName
	}
	if a.EmployeeMatricule != nil {
		resp.EmployeeMatricule = *a.EmployeeMatricule
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
