package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// TimeEntry is the body posted when a timer stops.
type TimeEntry struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"`
}

// NewTimeEntry builds a log entry for [start, end]. Duration is the elapsed
// time rounded to the nearest whole minute.
func NewTimeEntry(start, end time.Time) TimeEntry {
	return TimeEntry{
		Start:    start.UTC().Format(time.RFC3339Nano),
		End:      end.UTC().Format(time.RFC3339Nano),
		Duration: RoundMinutes(end.Sub(start)),
	}
}

func (e TimeEntry) Validate() error {
	if strings.TrimSpace(e.Start) == "" || strings.TrimSpace(e.End) == "" {
		return errors.New("model: time entry start and end are required")
	}
	if e.Duration < 0 {
		return errors.New("model: time entry duration must not be negative")
	}
	return nil
}

// RoundMinutes rounds d to whole minutes, halves away from zero.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// TimeSession is a logged timer session as stored by the backend.
type TimeSession struct {
	TaskID    string `json:"taskId"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Duration  int    `json:"duration"`
	Timestamp string `json:"timestamp"`
}

type TimeLog struct {
	Sessions []TimeSession `json:"sessions"`
}

// MinutesByTask sums session durations per task.
func (l TimeLog) MinutesByTask() map[string]int {
	out := make(map[string]int)
	for _, s := range l.Sessions {
		out[s.TaskID] += s.Duration
	}
	return out
}
