package employee

import (
	"io"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Matricule    string          `json:"matricule"`
	FullName     string          `json:"full_name"`
	Email        *string         `json:"email,omitempty"`
	PhoneNumber  *string         `json:"phone_number,omitempty"`
	Position     string          `json:"position"`
	Department   string          `json:"department"`
	ContractType string          `json:"contract_type"`
	HireDate     string          `json:"hire_date"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Matricule = strings.ToUpper(strings.TrimSpace(r.Matricule))
	if validator.IsEmpty(r.Matricule) {
		errs = append(errs, validator.ValidationError{
			Field:   "matricule",
			Message: "matricule is required",
		})
	} else if !validator.IsValidMatricule(r.Matricule) {
		errs = append(errs, validator.ValidationError{
			Field:   "matricule",
			Message: "matricule must be 2-32 characters of letters, digits or dashes",
		})
	}

	errs = append(errs, validateProfile(r.FullName, r.Email, r.PhoneNumber, r.Position, r.Department, r.ContractType, r.HireDate, r.BaseSalary)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEmployeeRequest struct {
	ID           string          `json:"-"`
	FullName     string          `json:"full_name"`
	Email        *string         `json:"email,omitempty"`
	PhoneNumber  *string         `json:"phone_number,omitempty"`
	Position     string          `json:"position"`
	Department   string          `json:"department"`
	ContractType string          `json:"contract_type"`
	HireDate     string          `json:"hire_date"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	errs = append(errs, validateProfile(r.FullName, r.Email, r.PhoneNumber, r.Position, r.Department, r.ContractType, r.HireDate, r.BaseSalary)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateProfile(fullName string, email, phone *string, position, department, contractType, hireDate string, baseSalary decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(fullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	} else if len(fullName) > 150 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 150 characters",
		})
	}

	if email != nil && *email != "" && !validator.IsValidEmail(*email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "phone_number must contain 8 to 15 digits",
		})
	}

	if validator.IsEmpty(position) {
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position is required",
		})
	}

	if validator.IsEmpty(department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department is required",
		})
	}

	if !ContractType(contractType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "contract_type",
			Message: "contract_type must be one of: CDI, CDD",
		})
	}

	if validator.IsEmpty(hireDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "hire_date",
			Message: "hire_date is required",
		})
	} else if _, valid := validator.IsValidDate(hireDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "hire_date",
			Message: "hire_date must be in YYYY-MM-DD format",
		})
	}

	if baseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}

	return errs
}

type UploadPhotoRequest struct {
	EmployeeID string
	File       io.Reader
	Filename   string
	Size       int64
}

func (r *UploadPhotoRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo is required",
		})
	} else if !validator.HasExtension(r.Filename, ".jpg", ".jpeg", ".png") {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "invalid file type: only jpg, jpeg, png allowed",
		})
	} else if r.Size > 5<<20 {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo size must not exceed 5MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID           string          `json:"id"`
	Matricule    string          `json:"matricule"`
	FullName     string          `json:"full_name"`
	Email        *string         `json:"email,omitempty"`
	PhoneNumber  *string         `json:"phone_number,omitempty"`
	Position     string          `json:"position"`
	Department   string          `json:"department"`
	ContractType ContractType    `json:"contract_type"`
	HireDate     string          `json:"hire_date"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
	PhotoURL     *string         `json:"photo_url,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

type EmployeeFilter struct {
	Search       *string `json:"search,omitempty"` // name or matricule
	Department   *string `json:"department,omitempty"`
	ContractType *string `json:"contract_type,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // full_name, matricule, hire_date, department
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.ContractType != nil && !ContractType(*f.ContractType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "contract_type",
			Message: "contract_type must be one of: CDI, CDD",
		})
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, []string{"full_name", "matricule", "hire_date", "department"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: full_name, matricule, hire_date, department",
			})
		}
	} else {
		f.SortBy = "full_name"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "asc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
