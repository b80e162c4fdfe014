package report

import "errors"

var (
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidYear        = errors.New("year must be a valid year")
	ErrUnsupportedFormat  = errors.New("export format must be csv or xlsx")
	ErrReportExportFailed = errors.New("failed to export report")
)
