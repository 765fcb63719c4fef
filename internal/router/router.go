package router

import (
	"log/slog"
	"net/http"

	"employee-directory/internal/handlers"
	"employee-directory/internal/metrics"
	"employee-directory/internal/middleware"
	"employee-directory/internal/repository"
	"employee-directory/internal/session"
	"employee-directory/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Employees repository.EmployeeStore
	Users     repository.UserStore
	Images    handlers.ImageSaver
	UploadDir string
	Sessions  *session.Manager
	DB        handlers.DBPinger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

func Setup(r *gin.Engine, d Deps) {
	eh := handlers.NewEmployeeHandler(d.Employees, d.Images, d.Metrics, d.Logger)
	ah := handlers.NewAuthHandler(d.Users, d.Sessions, d.Logger)
	hh := handlers.NewHealthHandler(d.DB)

	r.Use(middleware.RequestLogger(d.Logger), middleware.Instrument(d.Metrics))

	r.GET("/health", hh.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	r.Static(storage.URLPrefix, d.UploadDir)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", ah.Register)
		auth.POST("/login", ah.Login)
		auth.POST("/logout", ah.Logout)
		auth.GET("/me", middleware.Authenticate(d.Sessions), ah.Me)
	}

	employees := r.Group("/api/employees", middleware.Authenticate(d.Sessions))
	{
		employees.GET("", eh.ListEmployees)
		employees.GET("/export", eh.ExportEmployees)
		employees.GET("/:id", eh.GetEmployee)
		employees.POST("", eh.CreateEmployee)
		employees.PUT("/:id", eh.UpdateEmployee)
		employees.DELETE("/:id", eh.DeleteEmployee)
		employees.PATCH("/:id/status", eh.ToggleEmployeeStatus)
		employees.PATCH("/:id", eh.ToggleEmployeeStatus)
	}
}

// WithCORS allows credentialed requests from the configured browser origins.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}
