package model

import "time"

// LogEntry is one row of the append-only behavioral log. It mirrors the
// reading-log wire body; ID and Timestamp are assigned by the store.
type LogEntry struct {
	ID            int64     `json:"id,omitempty"`
	HeartRate     int       `json:"heart_rate" validate:"gte=0"`
	BreathRate    int       `json:"breath_rate" validate:"gte=0"`
	AnxietyScore  int       `json:"anxiety_score" validate:"gte=0,lte=100"`
	CognitiveLoad *int      `json:"cognitive_load,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status        Status    `json:"status" validate:"required,oneof=Pending Optimal Elevated Critical"`
	Timestamp     time.Time `json:"timestamp,omitzero"`
}

// EntryFromReading converts a scored reading into a log entry.
func EntryFromReading(r ScoredReading) LogEntry {
	return LogEntry{
		HeartRate:    r.Sample.HeartRate,
		BreathRate:   r.Sample.BreathRate,
		AnxietyScore: r.AnxietyScore,
		Status:       r.Status,
		Timestamp:    r.Timestamp,
	}
}

// Reading converts a stored entry back into a scored reading. The score and
// status are taken as logged, not recomputed.
func (e LogEntry) Reading() ScoredReading {
	return ScoredReading{
		Sample:       Sample{HeartRate: e.HeartRate, BreathRate: e.BreathRate},
		AnxietyScore: e.AnxietyScore,
		Status:       e.Status,
		Timestamp:    e.Timestamp,
	}
}
