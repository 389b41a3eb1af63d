package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure surfaces to the caller; match with errors.Is.
// Configuration failures use config.ErrConfig.
var (
	// ErrAuthentication means the portal refused the credentials.
	ErrAuthentication = errors.New("authentication error")
	// ErrHTTP is any other unexpected transport status.
	ErrHTTP = errors.New("http error")

	// ErrExtraction means the page structure did not match the locators.
	ErrExtraction = errors.New("extraction error")
	// ErrMissingDate is raised when an event has no usable date.
	ErrMissingDate = fmt.Errorf("%w: event has no date", ErrExtraction)
	// ErrMissingLink is raised when a title (or person) has no hyperlink.
	ErrMissingLink = fmt.Errorf("%w: missing link", ErrExtraction)
	// ErrFieldCount is raised when sibling field queries disagree in length.
	ErrFieldCount = fmt.Errorf("%w: mismatched field count", ErrExtraction)
	// ErrNoDateFound is raised when free text holds no recognisable date.
	ErrNoDateFound = fmt.Errorf("%w: no date found", ErrExtraction)
	// ErrInvalidDate is raised when a date token names an unknown month or day.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrExtraction)

	// ErrClassification means a birthday could not be placed in a section.
	ErrClassification = errors.New("classification error")

	// ErrFilter means a filter was built or queried with an unknown key.
	ErrFilter = errors.New("filter error")
)
