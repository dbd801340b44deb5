package transformer

import (
	"errors"
	"fmt"
)

// ErrInvalidWidgetRecord is returned when a widget record lacks the fields its
// kind requires.
var ErrInvalidWidgetRecord = errors.New("transformer: invalid widget record")

// RecordError describes which field of a widget record is malformed.
type RecordError struct {
	WidgetID string
	Field    string
	Reason   string
}

func (e *RecordError) Error() string {
	if e.WidgetID == "" {
		return fmt.Sprintf("%s: %s %s", ErrInvalidWidgetRecord, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: widget %s: %s %s", ErrInvalidWidgetRecord, e.WidgetID, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInvalidWidgetRecord
}
