package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDateRange is returned when a booking ends on or before its start date
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidNightCount is returned when a booking's night count is not positive
	// or disagrees with its date range
	ErrInvalidNightCount = errors.New("invalid night count")
	// ErrUnknownProperty is returned for property codes without configured rules
	ErrUnknownProperty = errors.New("unknown property")
	// ErrUnsupportedMode is returned for aggregation modes other than Revenue and Occupancy
	ErrUnsupportedMode = errors.New("unsupported mode")
	// ErrEmptyDataset is returned when there is nothing to aggregate
	ErrEmptyDataset = errors.New("empty dataset")
)

// ModeError describes an unsupported aggregation mode
type ModeError struct {
	Mode string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("%s: %q (must be Revenue or Occupancy)", ErrUnsupportedMode, e.Mode)
}

// Unwrap lets errors.Is match ErrUnsupportedMode
func (e *ModeError) Unwrap() error {
	return ErrUnsupportedMode
}

// RecordError is a validation failure attached to a single booking
type RecordError struct {
	ConfirmationCode string `json:"confirmation_code"`
	PropertyCode     string `json:"property_code,omitempty"`
	Err              error  `json:"-"`
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("booking %s: %v", e.ConfirmationCode, e.Err)
}

// Unwrap returns the underlying validation error
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reason returns the error message without the booking prefix
func (e *RecordError) Reason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// NewRecordError wraps err for the booking rec
func NewRecordError(rec BookingRecord, err error) *RecordError {
	return &RecordError{
		ConfirmationCode: rec.ConfirmationCode,
		PropertyCode:     rec.PropertyCode,
		Err:              err,
	}
}
