package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user profile not found")
	ErrUserBanned         = errors.New("user is banned")
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrSurveyClosed       = errors.New("survey is not accepting responses")
	ErrOwnSurvey          = errors.New("cannot respond to your own survey")
	ErrAlreadyResponded   = errors.New("you have already responded to this survey")
	ErrNotSurveyOwner     = errors.New("only the survey creator can view its analytics")
	ErrInvalidAnswer      = errors.New("invalid response")
	ErrInvalidSurvey      = errors.New("invalid survey")
	ErrEventNotFound      = errors.New("lottery event not found")
	ErrEventClosed        = errors.New("lottery event is not open")
	ErrEventFull          = errors.New("lottery event is full")
	ErrAlreadyEntered     = errors.New("you have already entered this lottery")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrExportUnavailable  = errors.New("export storage is not configured")
)
