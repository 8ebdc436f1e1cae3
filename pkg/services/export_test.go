package services

import "time"

// SetClock replaces the time source used for session and attempt stamps.
func (s *QuizService) SetClock(now func() time.Time) { s.now = now }
