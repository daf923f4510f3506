package models

import "time"

// Answer sources recorded in history.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// HistoryEntry records one resolved answer and what happened to it.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Namespace string    `json:"namespace"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Source    string    `json:"source"`
	Executed  bool      `json:"executed"`
	ExitCode  int       `json:"exit_code"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryQueryOpts specifies filters for querying history entries.
type HistoryQueryOpts struct {
	Namespace string
	Query     string
	Since     time.Time
	Limit     int
}
