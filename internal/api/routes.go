package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/policy"
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services bundles everything the handlers call.
type Services struct {
	Users       service.UserService
	Courses     service.CourseService
	Lessons     service.LessonService
	Assignments service.AssignmentService
	Submissions service.SubmissionService
	Themes      service.ThemeService
	Forum       service.ForumService
}

// Options carries the settings the router needs beyond the services.
type Options struct {
	Verifier       *identity.Verifier
	WebhookSecret  string
	MaxUploadBytes int64
	Metrics        *metrics.Metrics
	MetricsPath    string // empty disables the endpoint
	Logger         *zap.Logger
}

func SetupRoutes(router *gin.Engine, svc Services, opts Options) {
	RegisterValidators()
	log := opts.Logger

	router.Use(RequestID(), RequestLogger(log), Metrics(opts.Metrics))

	userHandler := NewUserHandler(svc.Users, svc.Themes, log)
	webhookHandler := NewWebhookHandler(svc.Users, opts.WebhookSecret, log)
	courseHandler := NewCourseHandler(svc.Courses, log)
	lessonHandler := NewLessonHandler(svc.Lessons, log)
	assignmentHandler := NewAssignmentHandler(svc.Assignments, log)
	submissionHandler := NewSubmissionHandler(svc.Submissions, opts.MaxUploadBytes, log)
	themeHandler := NewThemeHandler(svc.Themes, log)
	threadHandler := NewForumHandler(svc.Forum, domain.KindThread, log)
	postHandler := NewForumHandler(svc.Forum, domain.KindPost, log)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	apiV1.POST("/webhooks/identity", webhookHandler.Identity)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(opts.Verifier, svc.Users))
	{
		protected.GET("/me", userHandler.Me)
		protected.PUT("/me/theme", RequireCapability(policy.SelectTheme), userHandler.SelectTheme)

		themes := protected.Group("/themes")
		{
			themes.GET("", themeHandler.ListThemes)
			themes.POST("", RequireCapability(policy.ManageThemes), themeHandler.CreateTheme)
			themes.DELETE("/:id", RequireCapability(policy.ManageThemes), themeHandler.DeleteTheme)
		}

		courses := protected.Group("/courses")
		courses.Use(RequireCapability(policy.ViewCourses))
		{
			courses.GET("", courseHandler.ListCourses)
			courses.POST("", RequireCapability(policy.ManageCourses), courseHandler.CreateCourse)
			courses.GET("/mine", courseHandler.MyCourses)
			courses.GET("/code/:code", courseHandler.GetCourseByCode)
			courses.GET("/:id", courseHandler.GetCourse)
			courses.PATCH("/:id/status", RequireCapability(policy.ManageCourses), courseHandler.SetStatus)
			courses.PUT("/:id/director", RequireCapability(policy.ManageUsers), courseHandler.AssignDirector)
			courses.GET("/:id/students", RequireCapability(policy.ManageCourses), courseHandler.ListStudents)
			courses.POST("/:id/enrollment", RequireCapability(policy.Enroll), courseHandler.Enroll)
			courses.DELETE("/:id/enrollment", RequireCapability(policy.Enroll), courseHandler.Unenroll)

			courses.GET("/:id/lessons", lessonHandler.ListLessons)
			courses.POST("/:id/lessons", RequireCapability(policy.ManageLessons), lessonHandler.CreateLesson)
			courses.GET("/:id/assignments", assignmentHandler.ListAssignments)
			courses.POST("/:id/assignments", RequireCapability(policy.ManageAssignments), assignmentHandler.CreateAssignment)

			courses.GET("/:id/threads", RequireCapability(policy.ParticipateForum), threadHandler.ListThreads)
			courses.POST("/:id/threads", RequireCapability(policy.ParticipateForum), threadHandler.CreateThread)
		}

		lessons := protected.Group("/lessons")
		{
			lessons.GET("/:id", RequireCapability(policy.ViewCourses), lessonHandler.GetLesson)
			lessons.PUT("/:id", RequireCapability(policy.ManageLessons), lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", RequireCapability(policy.ManageLessons), lessonHandler.DeleteLesson)
		}

		assignments := protected.Group("/assignments")
		{
			assignments.GET("/:id", RequireCapability(policy.ViewCourses), assignmentHandler.GetAssignment)
			assignments.PATCH("/:id/status", RequireCapability(policy.ManageAssignments), assignmentHandler.SetStatus)
			assignments.DELETE("/:id", RequireCapability(policy.ManageAssignments), assignmentHandler.DeleteAssignment)
			assignments.POST("/:id/submission", RequireCapability(policy.Submit), submissionHandler.Submit)
			assignments.GET("/:id/submissions", RequireCapability(policy.Grade), submissionHandler.AssignmentSubmissions)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.GET("/mine", RequireCapability(policy.Submit), submissionHandler.MySubmissions)
			submissions.GET("/:id", submissionHandler.GetSubmission)
			submissions.GET("/:id/file", submissionHandler.Download)
			submissions.POST("/:id/grade", RequireCapability(policy.Grade), submissionHandler.Grade)
		}

		threads := protected.Group("/threads")
		threads.Use(RequireCapability(policy.ParticipateForum))
		registerDiscussionRoutes(threads, threadHandler)

		posts := protected.Group("/posts")
		posts.Use(RequireCapability(policy.ParticipateForum))
		{
			posts.GET("", postHandler.ListPosts)
			posts.POST("", postHandler.CreatePost)
		}
		registerDiscussionRoutes(posts, postHandler)

		admin := protected.Group("/admin")
		admin.Use(RequireCapability(policy.ManageUsers))
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.PUT("/users/:id/role", userHandler.ChangeRole)
		}
	}
}

// registerDiscussionRoutes mounts the per-discussion endpoints shared by threads and posts.
func registerDiscussionRoutes(g *gin.RouterGroup, h *ForumHandler) {
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/comments", h.AddComment)
	g.PUT("/:id/comments/:commentId", h.EditComment)
	g.DELETE("/:id/comments/:commentId", h.DeleteComment)
	g.POST("/:id/comments/:commentId/replies", h.AddReply)
	g.POST("/:id/reactions", h.ToggleReaction)
}
