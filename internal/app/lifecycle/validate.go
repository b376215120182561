package lifecycle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// Content limits
const (
	TitleMinLength       = 3
	TitleMaxLength       = 120
	DescriptionMaxLength = 2000
	LocationMaxLength    = 200
	AvailabilityLayout   = "2006-01-02"
)

// ValidateContent checks the owner-supplied fields of a post.
func ValidateContent(c models.PostContent) error {
	title := strings.TrimSpace(c.Title)
	if n := utf8.RuneCountInString(title); n < TitleMinLength || n > TitleMaxLength {
		return apperrors.NewValidationError("title",
			fmt.Sprintf("title must be between %d and %d characters", TitleMinLength, TitleMaxLength))
	}
	if utf8.RuneCountInString(c.Description) > DescriptionMaxLength {
		return apperrors.NewValidationError("description",
			fmt.Sprintf("description must be at most %d characters", DescriptionMaxLength))
	}
	if !c.PostType.Valid() {
		return apperrors.NewValidationError("postType", "postType must be request or offer")
	}
	if !c.Category.Valid() {
		return apperrors.NewValidationError("category", "category must be one of general, housing, tutoring, lend-borrow")
	}
	location := strings.TrimSpace(c.Location)
	if location == "" || utf8.RuneCountInString(location) > LocationMaxLength {
		return apperrors.NewValidationError("location",
			fmt.Sprintf("location is required and must be at most %d characters", LocationMaxLength))
	}
	if _, _, err := ParseAvailability(c.Availability); err != nil {
		return err
	}
	return nil
}

// ParseAvailability decodes "YYYY-MM-DD" or "YYYY-MM-DD,YYYY-MM-DD". A single
// date yields equal start and end.
func ParseAvailability(s string) (start, end time.Time, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) > 2 {
		return start, end, apperrors.NewValidationError("availability", "availability must be a date or a start,end pair")
	}

	start, err = time.Parse(AvailabilityLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return start, end, apperrors.NewValidationError("availability", "availability dates must use YYYY-MM-DD")
	}
	end = start
	if len(parts) == 2 {
		end, err = time.Parse(AvailabilityLayout, strings.TrimSpace(parts[1]))
		if err != nil {
			return start, end, apperrors.NewValidationError("availability", "availability dates must use YYYY-MM-DD")
		}
		if end.Before(start) {
			return start, end, apperrors.NewValidationError("availability", "availability end must not be before start")
		}
	}
	return start, end, nil
}
