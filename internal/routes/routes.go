package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/attendance"
	"github.com/hagwonhq/academy_backend_v1/internal/config"
	"github.com/hagwonhq/academy_backend_v1/internal/controllers"
	"github.com/hagwonhq/academy_backend_v1/internal/homework"
	"github.com/hagwonhq/academy_backend_v1/internal/metrics"
	"github.com/hagwonhq/academy_backend_v1/internal/middleware"
	"github.com/hagwonhq/academy_backend_v1/internal/ws"
)

// Deps carries the shared services built in main. Controllers are
// constructed here.
type Deps struct {
	Registry   *attendance.Registry
	Attendance *attendance.Service
	Homework   *homework.Service
	Hubs       *ws.Hubs
}

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	authCtrl := &controllers.AuthController{
		DB:            db,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshJWTSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	adminCtrl := &controllers.AdminController{DB: db, Registry: deps.Registry}
	academyCtrl := &controllers.AcademyController{DB: db}
	classCtrl := &controllers.ClassController{DB: db}
	attendanceCtrl := &controllers.AttendanceController{
		DB:       db,
		Registry: deps.Registry,
		Service:  deps.Attendance,
		Feed:     deps.Hubs.Feed,
	}
	homeworkCtrl := &controllers.HomeworkController{
		DB:             db,
		Service:        deps.Homework,
		CallbackSecret: cfg.CallbackSecret,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// Check-in is unauthenticated: the code itself is the credential.
	checkinLimiter := middleware.NewTokenBucket(cfg.CheckinRatePerMin, cfg.CheckinRatePerMin)
	r.POST("/api/v1/attendance/checkin", checkinLimiter.Limit(), attendanceCtrl.CheckIn)

	// Grading callback authenticates with the shared secret, not a JWT.
	r.POST("/api/v1/homework/grading/callback", homeworkCtrl.GradingCallback)

	// Protected
	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTExpiresIn: cfg.AccessTTL,
	})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.POST("/auth/logout", authCtrl.Logout)

		// Admin-only
		admin := api.Group("/admin", middleware.RequireRoles("admin"))
		{
			admin.GET("/users", adminCtrl.ListUsers)
			admin.POST("/users", adminCtrl.CreateUser)
			admin.GET("/users/:user_id", adminCtrl.GetUser)
			admin.PUT("/users/:user_id", adminCtrl.UpdateUser)
			admin.DELETE("/users/:user_id", adminCtrl.DeleteUser)

			admin.GET("/academies", academyCtrl.ListAcademies)
			admin.POST("/academies", academyCtrl.CreateAcademy)
			admin.GET("/academies/:academy_id", academyCtrl.GetAcademy)
			admin.PUT("/academies/:academy_id", academyCtrl.UpdateAcademy)
		}

		// Staff (teacher + admin)
		staff := api.Group("", middleware.RequireRoles("teacher", "admin"))
		{
			staff.GET("/classes", classCtrl.ListClasses)
			staff.POST("/classes", classCtrl.CreateClass)
			staff.PUT("/classes/:class_id", classCtrl.UpdateClass)
			staff.PUT("/classes/:class_id/schedule", classCtrl.SetSchedule)
			staff.GET("/classes/:class_id/students", classCtrl.Roster)
			staff.POST("/classes/:class_id/students", classCtrl.EnrollStudent)
			staff.DELETE("/classes/:class_id/students/:student_id", classCtrl.UnenrollStudent)

			staff.POST("/attendance/codes", attendanceCtrl.IssueCode)
			staff.GET("/attendance/codes", attendanceCtrl.ListCodes)
			staff.POST("/attendance/codes/:student_id/reactivate", attendanceCtrl.ReactivateCode)
			staff.POST("/attendance/codes/:student_id/deactivate", attendanceCtrl.DeactivateCode)
			staff.GET("/attendance/records", attendanceCtrl.ListRecords)

			staff.POST("/homework/assignments", homeworkCtrl.CreateAssignment)
			staff.POST("/homework/assignments/:id/close", homeworkCtrl.CloseAssignment)
			staff.GET("/homework/submissions", homeworkCtrl.ListSubmissions)
		}

		// Student
		student := api.Group("", middleware.RequireRoles("student"))
		{
			student.POST("/homework/submissions", homeworkCtrl.Submit)
			student.GET("/homework/assignments/feed", homeworkCtrl.AssignmentFeed)
		}

		api.GET("/homework/submissions/:id", homeworkCtrl.GetSubmission)

		// Realtime
		api.GET("/ws/attendance", ws.FeedHandler(deps.Hubs.Feed))
		api.GET("/ws/student", ws.StudentHandler(deps.Hubs))
	}
}
