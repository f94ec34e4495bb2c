package store

import "time"

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// RunMeta describes one recorded simulation run.
type RunMeta struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Topology   string    `json:"topology"`
	Neurons    int       `json:"neurons"`
	Ticks      int       `json:"ticks"`
	Seed       uint64    `json:"seed"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// TickMetrics is one row of a run's per-tick metric series.
type TickMetrics struct {
	Tick           int     `json:"tick"`
	TargetFiring   bool    `json:"target_firing"`
	TargetEnergy   float64 `json:"target_energy"`
	TargetPriority float64 `json:"target_priority"`
	TotalFiring    int     `json:"total_firing"`
	AvgEnergy      float64 `json:"avg_energy"`
	AvgNovelty     float64 `json:"avg_novelty"`
	AlertLevel     float64 `json:"alert_level"`
}
