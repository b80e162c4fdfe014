package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/badge"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
	fileService file.FileService
	publisher   realtime.Publisher
}

func NewEmployeeService(employeeRepository employee.EmployeeRepository, fileService file.FileService, publisher realtime.Publisher) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
		fileService:        fileService,
		publisher:          publisher,
	}
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// GetByMatricule implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetByMatricule(ctx context.Context, matricule string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByMatricule(ctx, strings.ToUpper(strings.TrimSpace(matricule)))
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, s.mapEmployeeToResponse(ctx, emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("invalid hire_date: %w", err)
	}

	newEmployee := employee.Employee{
		Matricule:    req.Matricule,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        normalizeOptional(req.Email),
		PhoneNumber:  normalizeOptional(req.PhoneNumber),
		Position:     strings.TrimSpace(req.Position),
		Department:   strings.TrimSpace(req.Department),
		ContractType: employee.ContractType(req.ContractType),
		HireDate:     hireDate,
		BaseSalary:   req.BaseSalary,
		IsActive:     true,
	}

	created, err := s.EmployeeRepository.Create(ctx, newEmployee)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.publish(ctx, realtime.ActionInsert, created.ID)
	return s.mapEmployeeToResponse(ctx, created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("invalid hire_date: %w", err)
	}

	emp.FullName = strings.TrimSpace(req.FullName)
	emp.Email = normalizeOptional(req.Email)
	emp.PhoneNumber = normalizeOptional(req.PhoneNumber)
	emp.Position = strings.TrimSpace(req.Position)
	emp.Department = strings.TrimSpace(req.Department)
	emp.ContractType = employee.ContractType(req.ContractType)
	emp.HireDate = hireDate
	emp.BaseSalary = req.BaseSalary
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}

	if err := s.EmployeeRepository.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.publish(ctx, realtime.ActionUpdate, emp.ID)
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// DeleteEmployee implements employee.EmployeeService. Attendance and advances
// of the employee go with it.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.EmployeeRepository.Delete(ctx, id); err != nil {
		return err
	}

	if emp.PhotoURL != nil {
		s.removePhoto(ctx, *emp.PhotoURL)
	}

	s.publish(ctx, realtime.ActionDelete, id)
	return nil
}

// UploadPhoto implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UploadPhoto(ctx context.Context, req employee.UploadPhotoRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	key, err := s.fileService.UploadPhoto(ctx, emp.ID, req.File)
	if err != nil {
		if errors.Is(err, file.ErrInvalidImage) {
			return employee.EmployeeResponse{}, employee.ErrInvalidPhoto
		}
		return employee.EmployeeResponse{}, err
	}

	if err := s.EmployeeRepository.UpdatePhoto(ctx, emp.ID, &key); err != nil {
		s.removePhoto(ctx, key)
		return employee.EmployeeResponse{}, err
	}

	if emp.PhotoURL != nil {
		s.removePhoto(ctx, *emp.PhotoURL)
	}
	emp.PhotoURL = &key

	s.publish(ctx, realtime.ActionUpdate, emp.ID)
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// DeletePhoto implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeletePhoto(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if emp.PhotoURL == nil {
		return employee.EmployeeResponse{}, employee.ErrPhotoNotFound
	}

	if err := s.EmployeeRepository.UpdatePhoto(ctx, emp.ID, nil); err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.removePhoto(ctx, *emp.PhotoURL)
	emp.PhotoURL = nil

	s.publish(ctx, realtime.ActionUpdate, emp.ID)
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// Badge implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Badge(ctx context.Context, id string, size int) ([]byte, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return badge.PNG(emp.Matricule, size)
}

func (s *EmployeeServiceImpl) removePhoto(ctx context.Context, key string) {
	if err := s.fileService.DeleteFile(ctx, key); err != nil {
		slog.Warn("failed to delete employee photo", "key", key, "error", err)
	}
}

func (s *EmployeeServiceImpl) publish(ctx context.Context, action realtime.Action, id string) {
	if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableEmployees, action, id)); err != nil {
		slog.Warn("failed to publish employee change", "action", action, "id", id, "error", err)
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// mapEmployeeToResponse resolves the stored photo key to a public URL.
func (s *EmployeeServiceImpl) mapEmployeeToResponse(ctx context.Context, emp employee.Employee) employee.EmployeeResponse {
	var photoURL *string
	if emp.PhotoURL != nil {
		url, err := s.fileService.GetFileURL(ctx, *emp.PhotoURL)
		if err != nil {
			slog.Warn("failed to resolve photo url", "employee_id", emp.ID, "error", err)
		} else {
			photoURL = &url
		}
	}

	resp := employee.EmployeeResponse{
		ID:           emp.ID,
		Matricule:    emp.Matricule,
		FullName:     emp.FullName,
		Email:        emp.Email,
		PhoneNumber:  emp.PhoneNumber,
		Position:     emp.Position,
		Department:   emp.Department,
		ContractType: emp.ContractType,
		HireDate:     emp.HireDate.Format("2006-01-02"),
		BaseSalary:   emp.BaseSalary,
		PhotoURL:     photoURL,
		IsActive:     emp.IsActive,
	}
	if !emp.CreatedAt.IsZero() {
		resp.CreatedAt = emp.CreatedAt.Format(time.RFC3339)
	}
	if !emp.UpdatedAt.IsZero() {
		resp.UpdatedAt = emp.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
