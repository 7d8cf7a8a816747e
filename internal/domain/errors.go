package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeInvalidMode       ErrorType = "invalid_mode"
	ErrorTypeOCRService        ErrorType = "ocr_service"
	ErrorTypeCorrectionService ErrorType = "correction_service"
	ErrorTypeExtraction        ErrorType = "extraction"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeIO                ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// ServiceError carries the raw HTTP outcome of a failed call to an external service.
type ServiceError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Service, e.Body)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func UnsupportedFormatError(message string, err error) *DomainError {
	return NewError(ErrorTypeUnsupportedFormat, message, err)
}

func InvalidModeError(message string, err error) *DomainError {
	return NewError(ErrorTypeInvalidMode, message, err)
}

// OCRServiceError wraps a non-success response from the vision service.
func OCRServiceError(statusCode int, body string) *DomainError {
	return NewError(ErrorTypeOCRService, "OCR request failed", &ServiceError{
		Service:    "vision",
		StatusCode: statusCode,
		Body:       body,
	})
}

func CorrectionServiceError(message string, err error) *DomainError {
	return NewError(ErrorTypeCorrectionService, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// TypeOf returns the ErrorType of the outermost DomainError in err's chain,
// or "" when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

func IsUnsupportedFormat(err error) bool { return TypeOf(err) == ErrorTypeUnsupportedFormat }

func IsInvalidMode(err error) bool { return TypeOf(err) == ErrorTypeInvalidMode }

func IsOCRService(err error) bool { return TypeOf(err) == ErrorTypeOCRService }

func IsCorrectionService(err error) bool { return TypeOf(err) == ErrorTypeCorrectionService }

func IsExtraction(err error) bool { return TypeOf(err) == ErrorTypeExtraction }
