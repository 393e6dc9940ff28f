package dto

import "fitquest.app/backend/internal/entity"

type WorkoutRequest struct {
	WorkoutType     string `json:"workout_type" binding:"required,max=50"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	CaloriesBurned  int    `json:"calories_burned" binding:"omitempty,gt=0"`
	Notes           string `json:"notes" binding:"max=2000"`
}

type WeightRequest struct {
	WeightKg float64 `json:"weight_kg" binding:"required,gt=0"`
}

type ProgressRequest struct {
	Type  string `json:"type" binding:"required,oneof=workout nutrition hydration calorie steps"`
	Value int    `json:"value" binding:"required,gt=0"`
}

// Snapshot is the read-only gamification state handed to the presentation
// layer after every mutating call.
type Snapshot struct {
	CurrentStreak      int                  `json:"current_streak"`
	BestStreak         int                  `json:"best_streak"`
	TotalPoints        int                  `json:"total_points"`
	Level              int                  `json:"level"`
	Experience         int                  `json:"experience"`
	TodaysChallenge    *entity.Challenge    `json:"todays_challenge"`
	RecentAchievements []entity.Achievement `json:"recent_achievements"`
}
