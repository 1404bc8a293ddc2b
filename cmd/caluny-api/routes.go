package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/caluny-api/api/swagger"
	"github.com/noah-isme/caluny-api/internal/handler"
	"github.com/noah-isme/caluny-api/internal/middleware"
	"github.com/noah-isme/caluny-api/internal/service"
	"github.com/noah-isme/caluny-api/pkg/config"
	"github.com/noah-isme/caluny-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/caluny-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/caluny-api/pkg/middleware/requestid"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type rateLimiter = middleware.Limiter

type routes struct {
	accounts         *handler.AccountHandler
	institutions     *handler.InstitutionHandler
	subjects         *handler.SubjectHandler
	courses          *handler.CourseHandler
	teachingSubjects *handler.TeachingSubjectHandler
	metrics          *handler.MetricsHandler
	authenticator    middleware.Authenticator
	metricsSvc       *service.MetricsService
	limiter          rateLimiter
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(h.metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Account endpoints answer with bare JSON bodies.
	throttle := middleware.RateLimit(h.limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, h.metricsSvc, logr, response.BareError)
	bareAuth := middleware.TokenAuth(h.authenticator, response.BareError)
	bareIDs := middleware.UUIDParams(response.BareError)

	r.POST("/create-app-user", throttle, h.accounts.CreateAppUser)
	r.POST("/obtain-token", throttle, h.accounts.ObtainToken)
	r.POST("/register-device", bareAuth, h.accounts.RegisterDevice)
	r.GET("/devices", bareAuth, h.accounts.ListDevices)
	r.DELETE("/devices/:id", bareAuth, bareIDs, h.accounts.DeactivateDevice)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.TokenAuth(h.authenticator, response.Error))
	api.Use(middleware.WithResponseMeta())
	api.Use(middleware.UUIDParams(response.Error))
	staff := middleware.RequireStaff(response.Error)

	api.GET("/universities", h.institutions.ListUniversities)
	api.POST("/universities", staff, h.institutions.CreateUniversity)
	api.GET("/universities/:id", h.institutions.GetUniversity)
	api.DELETE("/universities/:id", staff, h.institutions.DeleteUniversity)
	api.GET("/universities/:id/schools", h.institutions.ListSchools)
	api.POST("/universities/:id/schools", staff, h.institutions.CreateSchool)
	api.GET("/schools/:id", h.institutions.GetSchool)
	api.DELETE("/schools/:id", staff, h.institutions.DeleteSchool)
	api.GET("/schools/:id/degrees", h.institutions.ListDegrees)
	api.POST("/schools/:id/degrees", staff, h.institutions.CreateDegree)
	api.GET("/degrees/:id", h.institutions.GetDegree)

	api.GET("/levels", h.subjects.ListLevels)
	api.POST("/levels", staff, h.subjects.CreateLevel)
	api.GET("/degrees/:id/subjects", h.subjects.ListByDegree)
	api.POST("/degrees/:id/subjects", staff, h.subjects.Create)
	api.GET("/subjects/:id", h.subjects.Get)
	api.DELETE("/subjects/:id", staff, h.subjects.Delete)
	api.GET("/subjects/:id/extra-titles", h.subjects.ListExtraTitles)
	api.POST("/subjects/:id/extra-titles", staff, h.subjects.CreateExtraTitle)

	api.GET("/course-labels", h.courses.ListLabels)
	api.POST("/course-labels", staff, h.courses.CreateLabel)
	api.GET("/semester-dates", h.courses.ListSemesterDates)
	api.POST("/semester-dates", staff, h.courses.CreateSemesterDate)
	api.GET("/degrees/:id/courses", h.courses.ListByDegree)
	api.POST("/degrees/:id/courses", staff, h.courses.Create)
	api.GET("/courses/:id", h.courses.Get)
	api.DELETE("/courses/:id", staff, h.courses.Delete)

	api.GET("/me/teaching-subjects", h.teachingSubjects.Mine)
	api.POST("/teaching-subjects", staff, h.teachingSubjects.Create)
	api.GET("/teaching-subjects/:id", h.teachingSubjects.Get)
	api.DELETE("/teaching-subjects/:id", staff, h.teachingSubjects.Delete)
	api.PUT("/teaching-subjects/:id/students/:studentID", staff, h.teachingSubjects.AddStudent)
	api.DELETE("/teaching-subjects/:id/students/:studentID", staff, h.teachingSubjects.RemoveStudent)
	api.PUT("/teaching-subjects/:id/teachers/:teacherID", staff, h.teachingSubjects.AddTeacher)
	api.DELETE("/teaching-subjects/:id/teachers/:teacherID", staff, h.teachingSubjects.RemoveTeacher)
	api.GET("/teaching-subjects/:id/exams", h.teachingSubjects.ListExams)
	api.POST("/teaching-subjects/:id/exams", staff, h.teachingSubjects.CreateExam)
	api.GET("/teaching-subjects/:id/timetables", h.teachingSubjects.ListTimetables)
	api.POST("/teaching-subjects/:id/timetables", staff, h.teachingSubjects.CreateTimetable)
	api.GET("/teaching-subjects/:id/timetables/export", h.teachingSubjects.ExportTimetables)

	return r
}
