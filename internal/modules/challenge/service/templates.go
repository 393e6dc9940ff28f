package service

import "fitquest.app/backend/internal/entity"

type ChallengeTemplate struct {
	Title       string
	Type        entity.ChallengeCategory
	TargetValue int
	PointReward int
}

// challengeTemplates is the fixed daily-challenge catalog. One entry is
// picked at random per user per day. Keep the Type values stable; progress
// events are matched against them.
func challengeTemplates() []ChallengeTemplate {
	return []ChallengeTemplate{
		{Title: "Complete a 30-Minute Workout", Type: entity.ChallengeWorkout, TargetValue: 30, PointReward: 50},
		{Title: "Log All Your Meals", Type: entity.ChallengeNutrition, TargetValue: 3, PointReward: 30},
		{Title: "Drink 8 Glasses of Water", Type: entity.ChallengeHydration, TargetValue: 8, PointReward: 25},
		{Title: "Burn 300 Calories", Type: entity.ChallengeCalorie, TargetValue: 300, PointReward: 60},
		{Title: "Walk 8,000 Steps", Type: entity.ChallengeSteps, TargetValue: 8000, PointReward: 40},
	}
}
