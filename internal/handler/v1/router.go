package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/config"
	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/handler/middleware"
	"github.com/careops/hms-api/internal/service"
	"github.com/careops/hms-api/pkg/auth"
	"github.com/careops/hms-api/pkg/metrics"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Config *config.Config
	Log    *zap.Logger
	JWT    *auth.JWTManager
	Meter  *metrics.Collector

	Auth          *service.AuthService
	Users         *service.UserService
	Appointments  *service.AppointmentService
	Patients      *service.PatientService
	Doctors       *service.DoctorService
	Departments   *service.DepartmentService
	Records       *service.MedicalRecordService
	Notifications *service.NotificationService
	Attachments   *service.AttachmentService
	Dashboard     *service.DashboardService
}

// NewRouter assembles the gin engine: global middleware, health and metrics
// endpoints, and the versioned API surface with per-group role guards.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(deps.Log))
	r.Use(middleware.Metrics(deps.Meter))
	r.Use(middleware.CORS(deps.Config.CORS))
	r.Use(middleware.RateLimit(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.BurstSize))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.Auth)
	userHandler := NewUserHandler(deps.Users)
	apptHandler := NewAppointmentHandler(deps.Appointments)
	patientHandler := NewPatientHandler(deps.Patients, deps.Appointments, deps.Records, deps.Doctors, deps.Attachments)
	doctorHandler := NewDoctorHandler(deps.Doctors, deps.Appointments, deps.Patients)
	deptHandler := NewDepartmentHandler(deps.Departments)
	recordHandler := NewMedicalRecordHandler(deps.Records)
	notifHandler := NewNotificationHandler(deps.Notifications)
	attachHandler := NewAttachmentHandler(deps.Attachments)
	dashHandler := NewDashboardHandler(deps.Dashboard)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimit(deps.Config.RateLimit.AuthRequestsPerMinute))
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}
	api.GET("/auth/me", middleware.Auth(deps.JWT), authHandler.Me)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.JWT))

	staff := middleware.RequireRoles(domain.RoleAdmin, domain.RoleDoctor)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	appts := authed.Group("/appointments")
	{
		appts.GET("/slots", apptHandler.Slots)
		appts.GET("", apptHandler.List)
		appts.POST("", apptHandler.Create)
		appts.GET("/doctor/:doctorId", staff, apptHandler.ListByDoctor)
		appts.GET("/:id", apptHandler.Get)
		appts.PUT("/:id", staff, apptHandler.Update)
		appts.PUT("/:id/status", staff, apptHandler.UpdateStatus)
		appts.DELETE("/:id", adminOnly, apptHandler.Delete)
	}

	patients := authed.Group("/patients")
	{
		patients.POST("", staff, patientHandler.Create)
		patients.GET("", staff, patientHandler.List)
		patients.GET("/:id", patientHandler.Get)
		patients.PUT("/:id", patientHandler.Update)
		patients.DELETE("/:id", adminOnly, patientHandler.Delete)

		patients.GET("/:id/appointments", patientHandler.Appointments)
		patients.GET("/:id/medical-records", patientHandler.MedicalRecords)
		patients.GET("/:id/doctors", patientHandler.Doctors)
		patients.GET("/:id/stats", patientHandler.Stats)
		patients.POST("/:id/attachments", patientHandler.UploadAttachment)
		patients.GET("/:id/attachments", patientHandler.ListAttachments)
	}

	attachments := authed.Group("/attachments")
	{
		attachments.GET("/:id/download", attachHandler.Download)
		attachments.DELETE("/:id", staff, attachHandler.Delete)
	}

	doctors := authed.Group("/doctors")
	{
		doctors.POST("", adminOnly, doctorHandler.Create)
		doctors.GET("", doctorHandler.List)
		doctors.GET("/:id", doctorHandler.Get)
		doctors.PUT("/:id", staff, doctorHandler.Update)
		doctors.DELETE("/:id", adminOnly, doctorHandler.Delete)

		doctors.GET("/:id/appointments", staff, doctorHandler.Appointments)
		doctors.GET("/:id/patients", staff, doctorHandler.Patients)
		doctors.GET("/:id/stats", staff, doctorHandler.Stats)
	}

	departments := authed.Group("/departments")
	{
		departments.GET("", deptHandler.List)
		departments.POST("", adminOnly, deptHandler.Create)
		departments.DELETE("/:id", adminOnly, deptHandler.Delete)
	}

	records := authed.Group("/medical-records")
	{
		records.POST("", staff, recordHandler.Create)
		records.GET("", staff, recordHandler.List)
		records.DELETE("/:id", adminOnly, recordHandler.Delete)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", notifHandler.List)
		notifications.POST("", adminOnly, notifHandler.Create)
		notifications.PUT("/read-all", notifHandler.MarkAllRead)
		notifications.PUT("/:id/read", notifHandler.MarkRead)
	}

	users := authed.Group("/users", adminOnly)
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.DELETE("/:id", userHandler.Delete)
	}

	authed.GET("/dashboard/stats", adminOnly, dashHandler.Stats)

	return r
}
