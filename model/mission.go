package model

import "time"

// MissionType describes what a mission does.
type MissionType string

const (
	MissionImaging       MissionType = "imaging"
	MissionMonitoring    MissionType = "monitoring"
	MissionCommunication MissionType = "communication"
)

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionExecuting MissionStatus = "executing"
	MissionPaused    MissionStatus = "paused"
	MissionCompleted MissionStatus = "completed"
	MissionFailed    MissionStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s MissionStatus) Terminal() bool {
	return s == MissionCompleted || s == MissionFailed
}

// Valid reports whether s is a known mission status.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionExecuting, MissionPaused, MissionCompleted, MissionFailed:
		return true
	}
	return false
}

// Mission is a task bound to one satellite.
type Mission struct {
	ID        string        `json:"id"`
	Type      MissionType   `json:"type"`
	Satellite string        `json:"satellite"` // Satellite.ID
	Target    string        `json:"target"`
	Status    MissionStatus `json:"status"`
	Progress  float64       `json:"progress"` // 0-100
	StartTime time.Time     `json:"startTime"`

	// EstimatedCompletion is nil for open-ended missions.
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
}

// Clone returns a deep copy of m.
func (m Mission) Clone() Mission {
	if m.EstimatedCompletion != nil {
		t := *m.EstimatedCompletion
		m.EstimatedCompletion = &t
	}
	return m
}
