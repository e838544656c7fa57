package tracker

import "errors"

var (
	ErrEmptyTopic     = errors.New("topic name is empty")
	ErrDuplicateTopic = errors.New("topic already exists")
	ErrUnknownTopic   = errors.New("topic not found")
	ErrUnknownSubject = errors.New("subject not found")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
)
