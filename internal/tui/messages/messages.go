package messages

// TaskDoneMsg carries the outcome of a background task run behind a spinner
type TaskDoneMsg struct {
	Value any
	Err   error
}

// AbortMsg indicates the user gave up on a prompt
type AbortMsg struct{}
