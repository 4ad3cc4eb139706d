package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCommentNotFound     = errors.New("comment not found")
	ErrInvalidScore        = errors.New("rating score must be an integer between 1 and 5")
	ErrInvalidStatus       = errors.New("moderation status must be one of: approved, rejected, spam")
	ErrInvalidAverage      = errors.New("average rating must be between 0 and 5")
	ErrInvalidDistribution = errors.New("distribution keys must be star values between 1 and 5")
)
