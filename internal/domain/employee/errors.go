package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrMatriculeExists  = errors.New("matricule already exists")
	ErrEmailExists      = errors.New("email already registered")
	ErrInvalidPhoto     = errors.New("photo must be a jpg or png image up to 5MB")
	ErrEmployeeInactive = errors.New("employee is inactive")
	ErrPhotoNotFound    = errors.New("employee has no photo")
)
