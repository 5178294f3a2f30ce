package model

import "time"

// CommandStatus tracks a submitted command line.
type CommandStatus string

const (
	CommandExecuting CommandStatus = "executing"
	CommandSuccess   CommandStatus = "success"
	CommandError     CommandStatus = "error"
)

// CommandRecord is an audit entry for one submitted command line.
// Result holds the handler output on success and the error message on
// failure.
type CommandRecord struct {
	ID        uint64        `json:"id"`
	Command   string        `json:"command"`
	Timestamp time.Time     `json:"timestamp"`
	Status    CommandStatus `json:"status"`
	Result    string        `json:"result"`
}

// Done reports whether the record reached a terminal status.
func (r CommandRecord) Done() bool {
	return r.Status == CommandSuccess || r.Status == CommandError
}
