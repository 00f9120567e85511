package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrStorage           = errors.New("fallo de almacenamiento")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ValidationError entrada inválida detectada antes de cualquier escritura.
// Field nombra el campo ofensor (ej. "items[1].quantity").
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConflictError colisión de identificador, versión o serialización. Reintentable.
type ConflictError struct {
	Resource string
	Message  string
	Err      error
}

// NewConflictError construye un ConflictError.
func NewConflictError(resource, message string, cause error) *ConflictError {
	return &ConflictError{Resource: resource, Message: message, Err: cause}
}

func (e *ConflictError) Error() string {
	if e.Resource == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
func (e *ConflictError) Unwrap() error         { return e.Err }

// StateError operación ilegal para el estado actual de una entidad
// (transición no permitida, recepción sobre OC cerrada, stock insuficiente).
type StateError struct {
	Entity  string
	From    string
	To      string
	Message string
	Reason  error
}

// NewStateError construye un StateError. reason puede ser nil.
func NewStateError(entity, from, to, message string, reason error) *StateError {
	return &StateError{Entity: entity, From: from, To: to, Message: message, Reason: reason}
}

func (e *StateError) Error() string {
	if e.From != "" || e.To != "" {
		return fmt.Sprintf("%s: %s (%s -> %s)", e.Entity, e.Message, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
func (e *StateError) Unwrap() error         { return e.Reason }

// StorageError fallo de la transacción subyacente. No reintentable sin intervención.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError construye un StorageError.
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Err: cause}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) Unwrap() error         { return e.Err }

// IsDomainError indica si err ya pertenece a la taxonomía del dominio y no debe reclasificarse.
func IsDomainError(err error) bool {
	var (
		ve *ValidationError
		ce *ConflictError
		se *StateError
		st *StorageError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &se), errors.As(err, &st):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return true
	}
	return false
}
