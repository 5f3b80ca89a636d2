package service

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/media"
)

var errValidation = commonerrors.NewDomainError(
	"VALIDATION_FAILED",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"request validation failed",
)

func validatePublish(params PublishParams, videoFile, thumbnail *media.StagedFile) []string {
	var details []string

	title := strings.TrimSpace(params.Title)
	if title == "" {
		details = append(details, "title is required")
	} else if utf8.RuneCountInString(title) > constants.TitleMaxLength {
		details = append(details, "title must be at most 150 characters")
	}
	if utf8.RuneCountInString(params.Description) > constants.DescriptionMaxLength {
		details = append(details, "description must be at most 5000 characters")
	}
	if params.Duration < 0 {
		details = append(details, "duration must not be negative")
	}
	if videoFile == nil || videoFile.Size == 0 {
		details = append(details, "video file is required")
	}
	if thumbnail == nil || thumbnail.Size == 0 {
		details = append(details, "thumbnail is required")
	}

	return details
}
