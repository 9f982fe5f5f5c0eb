package domain

import "errors"

var (
	// ErrLoad wraps every fatal initialization failure.
	ErrLoad = errors.New("scene load failed")
	// ErrSceneNotReady is returned before the first successful load.
	ErrSceneNotReady = errors.New("scene not ready")
	// ErrFeatureNotFound is returned for unknown feature keys or missed hit tests.
	ErrFeatureNotFound = errors.New("feature not found")
	// ErrSessionNotFound is returned for unknown viewer sessions.
	ErrSessionNotFound = errors.New("session not found")
)
