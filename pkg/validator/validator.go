package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// SegmentValidator validates incoming transcript batches using
// go-playground/validator
type SegmentValidator struct {
	v *validator.Validate
}

// New creates a new SegmentValidator instance
func New() *SegmentValidator {
	return &SegmentValidator{v: validator.New()}
}

// Validate performs struct validation on a single value
func (sv *SegmentValidator) Validate(i interface{}) error {
	return sv.v.Struct(i)
}

// ValidateBatch checks that a segment batch is well-formed: non-empty, every
// segment carries its required fields, and segments are ordered by start
// timestamp.
func (sv *SegmentValidator) ValidateBatch(segments []entities.TranscriptSegment) error {
	if len(segments) == 0 {
		return fmt.Errorf("segment batch is empty")
	}
	for i, seg := range segments {
		if err := sv.v.Struct(seg); err != nil {
			return fmt.Errorf("segment %d invalid: %w", i, err)
		}
		if i > 0 && seg.StartTS < segments[i-1].StartTS {
			return fmt.Errorf("segment %d out of order: start %.3f precedes previous start %.3f", i, seg.StartTS, segments[i-1].StartTS)
		}
	}
	return nil
}
