package models

import "errors"

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrDuplicateActivity = errors.New("activity already recorded")
)
