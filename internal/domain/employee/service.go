package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	GetByMatricule(ctx context.Context, matricule string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error

	// UploadPhoto resizes and stores a photo, replacing any previous one.
	UploadPhoto(ctx context.Context, req UploadPhotoRequest) (EmployeeResponse, error)
	DeletePhoto(ctx context.Context, id string) (EmployeeResponse, error)

	// Badge renders the employee's QR badge as PNG.
	Badge(ctx context.Context, id string, size int) ([]byte, error)
}
