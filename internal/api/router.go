package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/brightnest/cleaning-portal/docs"
	"github.com/brightnest/cleaning-portal/internal/api/handler"
	"github.com/brightnest/cleaning-portal/internal/api/middleware"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
	"github.com/brightnest/cleaning-portal/internal/core/session"
)

// Deps are the services the router exposes.
type Deps struct {
	Auth     ports.AuthService
	Profiles ports.ProfileService
	Bookings ports.BookingService
	Wizards  ports.WizardService
	// Health maps a dependency name to its readiness check.
	Health map[string]handler.PingFunc
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Profiles)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	wizardHandler := handler.NewWizardHandler(d.Wizards)
	bookingHandler := handler.NewBookingHandler(d.Bookings)

	authMiddleware := middleware.Auth(d.Auth)
	signedIn := middleware.Gate(session.Guard{Requirement: session.Authenticated(), Roles: d.Profiles})
	adminOnly := middleware.Gate(session.Guard{Requirement: session.Admin(), Roles: d.Profiles})
	employeeOnly := middleware.Gate(session.Guard{Requirement: session.Employee(), Roles: d.Profiles})

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/signin", authHandler.SignIn)

	sessionGroup := e.Group("/auth", authMiddleware, signedIn)
	sessionGroup.GET("/session", authHandler.Session)
	sessionGroup.POST("/refresh", authHandler.Refresh)
	sessionGroup.POST("/signout", authHandler.SignOut)

	// --- Public catalog ---
	e.GET("/v1/services", profileHandler.Services)

	// --- Any signed-in user ---
	v1 := e.Group("/v1", authMiddleware, signedIn)
	v1.GET("/me/profile", profileHandler.Me)

	v1.POST("/booking-wizards", wizardHandler.Start)
	v1.GET("/booking-wizards/:id", wizardHandler.Get)
	v1.PUT("/booking-wizards/:id/schedule", wizardHandler.SetSchedule)
	v1.PUT("/booking-wizards/:id/payment", wizardHandler.SetPayment)
	v1.POST("/booking-wizards/:id/back", wizardHandler.Back)
	v1.POST("/booking-wizards/:id/confirm", wizardHandler.Confirm)

	v1.GET("/bookings", bookingHandler.ListMine)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	// --- Admin ---
	admin := e.Group("/v1/admin", authMiddleware, adminOnly)
	admin.GET("/stats", bookingHandler.Stats)
	admin.GET("/bookings", bookingHandler.ListAll)
	admin.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
	admin.PUT("/bookings/:id/assignee", bookingHandler.Assign)
	admin.GET("/bookings/:id/events", bookingHandler.History)
	admin.GET("/payments/orphaned", bookingHandler.OrphanedPayments)
	admin.GET("/employees", profileHandler.ListEmployees)
	admin.POST("/employees", profileHandler.CreateEmployee)
	admin.PATCH("/employees/:id", profileHandler.UpdateEmployee)
	admin.DELETE("/employees/:id", profileHandler.DeleteEmployee)

	// --- Employee ---
	employee := e.Group("/v1/employee", authMiddleware, employeeOnly)
	employee.GET("/tasks", bookingHandler.Tasks)
	employee.PATCH("/tasks/:id/status", bookingHandler.UpdateStatus)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
