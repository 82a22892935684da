package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class with a stable machine-readable name.
type Code string

const (
	CodeValidationFailed     Code = "VALIDATION_FAILED"
	CodeDuplicateRecord      Code = "DUPLICATE_RECORD"
	CodeNotFound             Code = "NOT_FOUND"
	CodeStorageError         Code = "STORAGE_ERROR"
	CodeBackupNotFound       Code = "BACKUP_NOT_FOUND"
	CodeInvalidImportFormat  Code = "INVALID_IMPORT_FORMAT"
	CodeImportInvalidRecords Code = "IMPORT_INVALID_RECORDS"
	CodeExportNoData         Code = "EXPORT_NO_DATA"
	CodeMigrationError       Code = "MIGRATION_ERROR"
)

// AppError carries a stable code alongside a human-readable message and an
// optional wrapped cause. Details holds structured context such as the list
// of validation issues behind a VALIDATION_FAILED error.
type AppError struct {
	Code    Code
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetails attaches structured context and returns the same error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// HasCode reports whether any error in err's chain is an AppError carrying
// the given code.
func HasCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// CodeOf extracts the code from err's chain, or the empty Code when err is
// not an AppError.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
