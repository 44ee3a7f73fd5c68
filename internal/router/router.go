package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libraryhub/internal/access"
	"libraryhub/internal/config"
	"libraryhub/internal/errors"
	"libraryhub/internal/handler"
	"libraryhub/internal/service"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Books        *handler.BookHandler
	Authors      *handler.AuthorHandler
	Categories   *handler.CategoryHandler
	Publishers   *handler.PublisherHandler
	Loans        *handler.LoanHandler
	Reservations *handler.ReservationHandler
	Reviews      *handler.ReviewHandler
	Admin        *handler.AdminHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, authService service.AuthService, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	if cfg.SimulatedLatency > 0 {
		e.Use(latency(cfg.SimulatedLatency))
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require a live session)
	secured := api.Group("", sessionAuth(authService))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/profile", h.Auth.Profile)

	secured.GET("/books", h.Books.ListBooks)
	secured.GET("/books/:id", h.Books.GetBook)
	secured.POST("/books", h.Books.CreateBook)
	secured.PUT("/books/:id", h.Books.UpdateBook)
	secured.DELETE("/books/:id", h.Books.DeleteBook)

	secured.GET("/authors", h.Authors.ListAuthors)
	secured.GET("/authors/:id", h.Authors.GetAuthor)
	secured.POST("/authors", h.Authors.CreateAuthor)
	secured.PUT("/authors/:id", h.Authors.UpdateAuthor)
	secured.DELETE("/authors/:id", h.Authors.DeleteAuthor)

	secured.GET("/categories", h.Categories.ListCategories)
	secured.GET("/categories/:id", h.Categories.GetCategory)
	secured.POST("/categories", h.Categories.CreateCategory)
	secured.PUT("/categories/:id", h.Categories.UpdateCategory)
	secured.DELETE("/categories/:id", h.Categories.DeleteCategory)

	secured.GET("/publishers", h.Publishers.ListPublishers)
	secured.GET("/publishers/:id", h.Publishers.GetPublisher)
	secured.POST("/publishers", h.Publishers.CreatePublisher)
	secured.PUT("/publishers/:id", h.Publishers.UpdatePublisher)
	secured.DELETE("/publishers/:id", h.Publishers.DeletePublisher)

	secured.GET("/loans", h.Loans.ListLoans)
	secured.GET("/loans/:id", h.Loans.GetLoan)
	secured.POST("/loans", h.Loans.CreateLoan)
	secured.POST("/loans/:id/return", h.Loans.ReturnLoan)

	secured.GET("/reservations", h.Reservations.ListReservations)
	secured.POST("/reservations", h.Reservations.CreateReservation)
	secured.POST("/reservations/:id/cancel", h.Reservations.CancelReservation)

	secured.GET("/reviews", h.Reviews.ListReviews)
	secured.POST("/reviews", h.Reviews.CreateReview)
	secured.DELETE("/reviews/:id", h.Reviews.DeleteReview)

	secured.GET("/users", h.Users.ListUsers)
	secured.GET("/users/:id", h.Users.GetUser)
	secured.PUT("/users/:id", h.Users.UpdateUser)
	secured.DELETE("/users/:id", h.Users.DeleteUser)

	secured.GET("/settings", h.Admin.GetSettings)
	secured.PUT("/settings", h.Admin.UpdateSettings)
	secured.GET("/connection-logs", h.Admin.ListConnectionLogs)
	secured.GET("/dashboard", h.Admin.Dashboard)
	secured.POST("/admin/seed", h.Admin.Seed)
}

// sessionAuth validates the bearer token against the session store and puts
// the principal on the request context.
func sessionAuth(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		SuccessHandler: func(c echo.Context) {
			if p, ok := c.Get("user").(*access.Principal); ok {
				req := c.Request()
				c.SetRequest(req.WithContext(access.WithPrincipal(req.Context(), p)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrNotAuthenticated.Error(),
				Code:  "NOT_AUTHENTICATED",
			})
		},
	})
}

func requestLogger() echo.MiddlewareFunc {
	logger := slog.Default().With("module", "http", "layer", "router")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// latency delays every request by d, or until the client goes away.
func latency(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := sleep(c.Request().Context(), d); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
