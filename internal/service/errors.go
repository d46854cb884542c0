package service

import "errors"

// Failure taxonomy. Handlers map these onto HTTP status codes; everything
// else surfaces as an upstream 500.
var (
	ErrNotFound            = errors.New("File not found")
	ErrUnsupportedFileType = errors.New("Unsupported file type")
	ErrEmptyFile           = errors.New("No file uploaded")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrEmailExists         = errors.New("User already exists")
	ErrInvalidFileName     = errors.New("File name contains invalid characters")
	ErrInvalidFolder       = errors.New("Invalid folder path")
)

// StorageError wraps a failed object-store call.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DatabaseError wraps a failed metadata-store call.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return "database " + e.Op + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
