package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api/handler"
	"github.com/moneykrishna/taskdesk/internal/api/middleware"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
	"github.com/moneykrishna/taskdesk/internal/core/service"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Sessions     ports.SessionService
	Tasks        ports.TaskCache
	Syncer       ports.TaskSyncer
	Backend      ports.Backend
	Dashboards   *service.Dashboards
	CookieSecure bool
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("taskdesk"))

	// Application routes carry a client identity and session. Routes added
	// straight to e (health, metrics, docs) skip both.
	app := e.Group("", middleware.ClientID(d.CookieSecure), middleware.Session(d.Sessions, d.Log))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Sessions)
	app.POST("/login", authHandler.Login)
	app.POST("/signup", authHandler.Signup)
	app.POST("/logout", authHandler.Logout)
	app.GET("/session", authHandler.Session)

	// --- Task board (works logged out) ---
	boardHandler := handler.NewBoardHandler(d.Tasks, d.Syncer)
	board := app.Group("/board/tasks")
	board.GET("", boardHandler.List)
	board.POST("", boardHandler.Create)
	board.PATCH("/:id", boardHandler.Update)
	board.DELETE("/:id", boardHandler.Delete)
	board.POST("/:id/toggle", boardHandler.Toggle)
	board.POST("/:id/sync", boardHandler.Sync)

	attendanceHandler := handler.NewAttendanceHandler(d.Backend)

	// --- Admin section ---
	adminHandler := handler.NewAdminHandler(d.Backend, d.Dashboards, d.Log)
	admin := app.Group("/admin", middleware.RequireRole(domain.RoleAdmin, d.Log))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/team", adminHandler.Team)
	admin.PUT("/team", adminHandler.SetTeam)
	admin.GET("/tasks", adminHandler.ListTasks)
	admin.POST("/tasks", adminHandler.CreateTask)
	admin.GET("/tasks/:id", adminHandler.GetTask)
	admin.PUT("/tasks/:id", adminHandler.UpdateTask)
	admin.DELETE("/tasks/:id", adminHandler.DeleteTask)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.POST("/users/:id/role", adminHandler.ChangeRole)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/attendance", adminHandler.AllAttendance)
	admin.GET("/attendance/active", adminHandler.ActiveUsers)
	admin.GET("/attendance/users/:id", adminHandler.UserAttendance)
	admin.GET("/leads", adminHandler.ListLeads)
	admin.POST("/leads/upload", adminHandler.UploadLeads)

	// --- Staff section ---
	staffHandler := handler.NewStaffHandler(d.Backend, d.Dashboards)
	staff := app.Group("/staff", middleware.RequireRole(domain.RoleStaff, d.Log))
	staff.GET("/dashboard", staffHandler.Dashboard)
	staff.GET("/tasks", staffHandler.ListTasks)
	staff.GET("/tasks/:id", staffHandler.GetTask)
	staff.PATCH("/tasks/:id/status", staffHandler.UpdateStatus)
	staff.PATCH("/tasks/:id/details", staffHandler.UpdateDetails)
	registerAttendance(staff, attendanceHandler)

	// --- Sales section ---
	salesHandler := handler.NewSalesHandler(d.Backend, d.Dashboards)
	sales := app.Group("/sales", middleware.RequireRole(domain.RoleSales, d.Log))
	sales.GET("/dashboard", salesHandler.Dashboard)
	sales.GET("/leads", salesHandler.ListLeads)
	sales.GET("/leads/not-interested", salesHandler.NotInterested)
	sales.POST("/leads/:id/status", salesHandler.SetStatus)
	sales.POST("/leads/:id/proof", salesHandler.UploadProof)
	sales.POST("/leads/:id/followups", salesHandler.CreateFollowUp)
	sales.GET("/followups", salesHandler.ListFollowUps)
	sales.POST("/account-openings", salesHandler.CreateAccountOpening)
	registerAttendance(sales, attendanceHandler)

	return e
}

func registerAttendance(g *echo.Group, h *handler.AttendanceHandler) {
	g.POST("/attendance/check-in", h.CheckIn)
	g.POST("/attendance/check-out", h.CheckOut)
	g.GET("/attendance/today", h.Today)
	g.GET("/attendance/records", h.Records)
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("client_id", middleware.ClientIDFrom(c)).
				Msg("request")
			return nil
		},
	})
}
