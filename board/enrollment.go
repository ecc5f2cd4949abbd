package board

import (
	"context"
	"strings"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/internal/util"
	"github.com/teranos/cashngo/logger"
)

// CurrentCourse returns the enrolled course id, or "" when not enrolled
func (b *Board) CurrentCourse(ctx context.Context) string {
	if id := b.cols.CurrentCourseID.Read(ctx); id != nil {
		return *id
	}
	return ""
}

// Enroll puts the worker in courseID. A worker holds one course at a time;
// enrolling again in the same course changes nothing.
func (b *Board) Enroll(ctx context.Context, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return errors.NewInvalidRequestError("course id is required")
	}

	var current string
	b.cols.CurrentCourseID.UpdateIf(ctx, func(prev *string) (*string, bool) {
		if prev != nil && *prev != "" {
			current = *prev
			return prev, false
		}
		return util.Ptr(courseID), true
	})

	switch current {
	case "":
		b.log.Infow("Enrolled", logger.FieldCourseID, courseID)
		return nil
	case courseID:
		return nil
	default:
		return errors.WithHintf(
			errors.Wrapf(ErrAlreadyEnrolled, "enrolled in %s", current),
			"drop course %s before enrolling in %s", current, courseID,
		)
	}
}

// DropCourse ends the current enrollment
func (b *Board) DropCourse(ctx context.Context) {
	b.cols.CurrentCourseID.Clear(ctx)
	b.log.Infow("Course dropped")
}

// ShouldShowGuide reports whether the first-run guide is still pending
func (b *Board) ShouldShowGuide(ctx context.Context) bool {
	return !b.cols.GuideShown.Read(ctx)
}

// MarkGuideShown records that the guide was seen
func (b *Board) MarkGuideShown(ctx context.Context) {
	b.cols.GuideShown.Write(ctx, true)
}

// ResetGuide makes the guide show again
func (b *Board) ResetGuide(ctx context.Context) {
	b.cols.GuideShown.Clear(ctx)
}
