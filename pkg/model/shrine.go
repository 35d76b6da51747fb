package model

// ShrineInfo is the global shrine progress.
type ShrineInfo struct {
	Progress []ShrineStage `json:"progress"`
}

type ShrineStage struct {
	ID              int          `json:"id"`
	Tier            ShrineTier   `json:"tier"`
	Effects         []ItemEffect `json:"effects"`
	CurrentValue    int64        `json:"current_value"`
	TargetValue     int64        `json:"target_value"`
	TargetRemaining int64        `json:"target_remaining"`
	Percentage      float64      `json:"percentage"`
	GoalReachedAt   Timestamp    `json:"goal_reached_at"`
	Active          bool         `json:"is_active"`
	InProgress      bool         `json:"in_progress"`
	CanActivate     bool         `json:"can_activate"`
}

type ShrineTier struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
