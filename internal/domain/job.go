package domain

import "strings"

// Domain identifies a target company, e.g. "acme.com".
type Domain string

// JobHandle is the remote job_id returned when a prospect job is launched.
type JobHandle string

type JobStatus string

const (
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusFailed    JobStatus = "FAILED"
	StatusTimedOut  JobStatus = "TIMED_OUT"
	StatusAborted   JobStatus = "ABORTED"

	// StatusAbandoned is never reported by the remote service. The poller
	// assigns it when a job exceeds its attempt or wall-time bound.
	StatusAbandoned JobStatus = "ABANDONED"
)

func ParseJobStatus(s string) (JobStatus, bool) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusRunning, StatusSucceeded, StatusFailed, StatusTimedOut, StatusAborted:
		return st, true
	}
	return "", false
}

func (s JobStatus) IsTerminal() bool {
	return s != StatusRunning && s != ""
}

func (s JobStatus) String() string { return string(s) }
