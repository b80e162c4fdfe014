package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	Matricule    string
	FullName     string
	Email        *string
	PhoneNumber  *string
	Position     string
	Department   string
	ContractType ContractType
	HireDate     time.Time
	BaseSalary   decimal.Decimal
	PhotoURL     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ContractType string

const (
	ContractCDI ContractType = "CDI" // permanent
	ContractCDD ContractType = "CDD" // fixed-term
)

func (c ContractType) Valid() bool {
	return c == ContractCDI || c == ContractCDD
}
