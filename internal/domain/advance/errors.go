package advance

import "errors"

var (
	ErrAdvanceNotFound   = errors.New("salary advance not found")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)
