package validator

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Matricule is the badge code: 2-32 chars, upper-case letters, digits, dashes.
var matriculeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,31}$`)

func IsValidMatricule(code string) bool {
	return matriculeRegex.MatchString(code)
}

// IsValidPhoneNumber accepts 8 to 15 digits with an optional leading '+'.
// Spaces, dots and dashes are ignored.
func IsValidPhoneNumber(phone string) bool {
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "")
	phone = strings.TrimPrefix(replacer.Replace(phone), "+")
	return len(phone) >= 8 && len(phone) <= 15 && IsNumeric(phone)
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// HasExtension reports whether filename ends with one of exts (case-insensitive).
func HasExtension(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	return IsInSlice(ext, exts)
}

// IsValidMonth checks a 1-12 month and a plausible year.
func IsValidMonth(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}
