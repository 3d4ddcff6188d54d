package tgis

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface of the temporal metadata database.
// Write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Errors produced by the store itself are of type *Error.
type IStore interface {
	// Close releases the connection to the database.
	Close() error

	// HasDataset returns whether a dataset with the given id exists.
	HasDataset(id ID) (bool, error)
	// GetDataset returns the dataset with the given id, including its recorded extent.
	// An error with code RetCNotFound is returned if the dataset does not exist.
	GetDataset(id ID) (Dataset, error)
	// InsertDataset creates a new, empty dataset.
	// An error with code RetCAlreadyExists is returned if the id is taken.
	InsertDataset(ds Dataset) error
	// DeleteDataset removes a dataset and all its registrations. The registered maps
	// themselves are kept.
	DeleteDataset(id ID) error
	// ListDatasets returns all datasets ordered by id. An empty mapset matches all mapsets.
	ListDatasets(mapset string) ([]Dataset, error)

	// HasMap returns whether a map with the given id exists.
	HasMap(id ID) (bool, error)
	// GetMap returns the map with the given id.
	// An error with code RetCNotFound is returned if the map does not exist.
	GetMap(id ID) (Map, error)
	// InsertMap inserts a new map entry.
	// An error with code RetCAlreadyExists is returned if the id is taken.
	InsertMap(m Map) error
	// DeleteMap removes a map entry and unregisters it from every dataset.
	DeleteMap(id ID) error

	// RegisterMap adds an existing map to an existing dataset. The map's timestamp must
	// be of the dataset's temporal type. Registering a map twice is a no-op.
	RegisterMap(dataset ID, m ID) error
	// RegisteredMaps returns the maps registered to a dataset that satisfy the where
	// predicate, ordered by start time. An empty predicate matches all members. The
	// predicate is opaque to the caller and interpreted by the implementation.
	RegisteredMaps(dataset ID, where string) ([]Map, error)
	// UpdateFromRegisteredMaps recomputes the extent of a dataset from all its
	// registered maps, stores it and returns the updated dataset.
	UpdateFromRegisteredMaps(dataset ID) (Dataset, error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("TemporalStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code RetCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound reports whether err signals a missing dataset or map.
func IsNotFound(err error) bool {
	return HasCode(err, RetCNotFound)
}

// IsAlreadyExists reports whether err signals an id that is already taken.
func IsAlreadyExists(err error) bool {
	return HasCode(err, RetCAlreadyExists)
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                   // 1: Operation failed due to an internal (database) error.
	RetCNotFound                        // 2: The dataset or map does not exist.
	RetCAlreadyExists                   // 3: The dataset or map already exists.
	RetCInvalidOperation                // 4: The operation is not valid for the given arguments.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCAlreadyExists:
		return "AlreadyExists"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
