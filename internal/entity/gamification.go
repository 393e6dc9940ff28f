package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StreakType tags a consecutive-day counter. Stored as plain strings so the
// values double as API payload tags.
type StreakType string

const (
	StreakWorkout        StreakType = "workout"
	StreakWeightTracking StreakType = "weight_tracking"
	StreakMealLogging    StreakType = "meal_logging"
)

type ChallengeCategory string

const (
	ChallengeWorkout   ChallengeCategory = "workout"
	ChallengeNutrition ChallengeCategory = "nutrition"
	ChallengeHydration ChallengeCategory = "hydration"
	ChallengeCalorie   ChallengeCategory = "calorie"
	ChallengeSteps     ChallengeCategory = "steps"
)

type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

type AchievementCategory string

const (
	CategoryStreak        AchievementCategory = "streak"
	CategoryWorkouts      AchievementCategory = "workouts"
	CategoryWeightEntries AchievementCategory = "weight_entries"
	CategoryLevel         AchievementCategory = "level"
)

type PointSource string

const (
	SourceWorkoutStreak PointSource = "workout_streak"
	SourceWeightStreak  PointSource = "weight_streak"
	SourceChallenge     PointSource = "challenge"
	SourceAchievement   PointSource = "achievement"
	SourceLevelUp       PointSource = "level_up"
)

type Streak struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_streak_user_type,priority:1;not null" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type         StreakType `gorm:"size:50;uniqueIndex:idx_streak_user_type,priority:2;not null" json:"type"`
	CurrentCount int        `gorm:"default:0" json:"current_count"`
	BestCount    int        `gorm:"default:0" json:"best_count"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastUpdated  *time.Time `json:"last_updated"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Streak) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Challenge struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID         `gorm:"type:uuid;index:idx_challenge_user_date,priority:1;not null" json:"user_id"`
	User         *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title        string            `gorm:"size:120;not null" json:"title"`
	Type         ChallengeCategory `gorm:"size:50;not null" json:"type"`
	TargetValue  int               `gorm:"not null" json:"target_value"`
	CurrentValue int               `gorm:"default:0" json:"current_value"`
	PointReward  int               `gorm:"not null" json:"point_reward"`
	IsCompleted  bool              `gorm:"default:false" json:"is_completed"`
	CreatedAt    time.Time         `gorm:"index:idx_challenge_user_date,priority:2;autoCreateTime" json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Achievement rows are created at the moment of unlock and never mutated.
type Achievement struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID           `gorm:"type:uuid;uniqueIndex:idx_achievement_user_key,priority:1;not null" json:"user_id"`
	User        *User               `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Key         string              `gorm:"size:80;uniqueIndex:idx_achievement_user_key,priority:2;not null" json:"key"`
	Title       string              `gorm:"size:120;not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	IconName    string              `gorm:"size:80" json:"icon_name"`
	Tier        AchievementTier     `gorm:"size:20;not null" json:"tier"`
	Category    AchievementCategory `gorm:"size:50;not null" json:"category"`
	PointReward int                 `gorm:"default:0" json:"point_reward"`
	IsUnlocked  bool                `gorm:"default:true" json:"is_unlocked"`
	UnlockedAt  time.Time           `gorm:"index" json:"unlocked_at"`
	Progress    int                 `gorm:"column:progress_value;default:0" json:"progress_value"`
	TargetValue int                 `gorm:"default:0" json:"target_value"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// PointTransaction is the append-only audit ledger. Points are always
// positive; the engine never debits.
type PointTransaction struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;index:idx_points_user_date,priority:1;not null" json:"user_id"`
	User        *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Points      int         `gorm:"not null" json:"points"`
	Type        string      `gorm:"size:20;not null" json:"type"`
	Source      PointSource `gorm:"size:50;not null" json:"source"`
	Description string      `gorm:"size:255" json:"description"`
	CreatedAt   time.Time   `gorm:"index:idx_points_user_date,priority:2;autoCreateTime" json:"created_at"`
}
