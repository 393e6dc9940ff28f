package server

import (
	"os"
	"strings"
	"time"

	"fitquest.app/backend/internal/middleware"
	"fitquest.app/backend/pkg/logger"

	achievementRepo "fitquest.app/backend/internal/modules/achievement/repository"
	achievementService "fitquest.app/backend/internal/modules/achievement/service"

	activityHttp "fitquest.app/backend/internal/modules/activity/delivery/http"
	activityRepo "fitquest.app/backend/internal/modules/activity/repository"
	activityService "fitquest.app/backend/internal/modules/activity/service"

	challengeRepo "fitquest.app/backend/internal/modules/challenge/repository"
	challengeService "fitquest.app/backend/internal/modules/challenge/service"

	gamificationHttp "fitquest.app/backend/internal/modules/gamification/delivery/http"
	gamificationService "fitquest.app/backend/internal/modules/gamification/service"

	notiHttp "fitquest.app/backend/internal/modules/notification/delivery/http"
	notifRepo "fitquest.app/backend/internal/modules/notification/repository"
	notifService "fitquest.app/backend/internal/modules/notification/service"

	pointsRepo "fitquest.app/backend/internal/modules/points/repository"
	pointsService "fitquest.app/backend/internal/modules/points/service"

	streakRepo "fitquest.app/backend/internal/modules/streak/repository"
	streakService "fitquest.app/backend/internal/modules/streak/service"

	userHttp "fitquest.app/backend/internal/modules/user/delivery/http"
	userRepo "fitquest.app/backend/internal/modules/user/repository"
	userService "fitquest.app/backend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, redisClient, logger.L)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	achievements := achievementRepo.NewAchievementRepository(db)
	streaks := streakRepo.NewStreakRepository(db)
	activities := activityRepo.NewActivityRepository(db)
	points := pointsRepo.NewPointsRepository(db)
	challenges := challengeRepo.NewChallengeRepository(db)

	ledgerSvc := pointsService.NewLedgerService(points, users, achievements, notificationSvc, logger.L)
	streakSvc := streakService.NewStreakService(streaks, logger.L)
	activitySvc := activityService.NewActivityService(activities)
	evaluatorSvc := achievementService.NewEvaluatorService(achievements, streaks, activities, ledgerSvc, notificationSvc, logger.L)
	challengeSvc := challengeService.NewChallengeService(challenges, ledgerSvc, evaluatorSvc, notificationSvc, logger.L)

	gamificationSvc := gamificationService.NewGamificationService(users, activitySvc, streakSvc, ledgerSvc, challengeSvc, evaluatorSvc, logger.L)
	gamificationHandler := gamificationHttp.NewGamificationHandler(gamificationSvc, ledgerSvc)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Activity routes
		protected.POST("/activities/workouts", gamificationHandler.RecordWorkout)
		protected.GET("/activities/workouts", activityHandler.GetWorkouts)
		protected.POST("/activities/weight", gamificationHandler.RecordWeight)
		protected.GET("/activities/weight", activityHandler.GetWeightEntries)

		// Challenge routes
		protected.GET("/challenges/today", gamificationHandler.GetTodayChallenge)
		protected.POST("/challenges/progress", gamificationHandler.RecordChallengeProgress)

		// Gamification state
		protected.GET("/gamification/summary", gamificationHandler.GetSummary)
		protected.GET("/achievements/recent", gamificationHandler.GetRecentAchievements)
		protected.GET("/points/history", gamificationHandler.GetPointHistory)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
