package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNIPExists        = errors.New("NIP already registered")
	ErrInvalidNIP       = errors.New("NIP must be exactly 18 digits")
	ErrNoDataToUpdate   = errors.New("no data to update")
	ErrCannotDeleteSelf = errors.New("cannot delete your own employee record")
)
