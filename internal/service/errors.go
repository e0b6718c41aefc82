package service

import "errors"

// Recoverable service errors. A missing user or recommendation is a normal
// request-level failure; an internal contradiction during selection surfaces
// as *recommend.ConsistencyError and aborts the run instead.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrTraceNotFound          = errors.New("decision trace not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserExists             = errors.New("user already exists")
	ErrConsentRequired        = errors.New("user has not consented to recommendation generation")
	ErrInvalidStatus          = errors.New("invalid recommendation status transition")
)
