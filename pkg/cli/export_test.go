package cli

// SetMaxLineBytes lowers the input line limit.
func (s *Shell) SetMaxLineBytes(n int) { s.maxLine = n }
