// Package app assembles the HTTP server from a store and its session
// backends.
package app

import (
	"github.com/labstack/echo/v4"

	"libraryhub/internal/auth"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/handler"
	"libraryhub/internal/router"
	"libraryhub/internal/service"
	"libraryhub/internal/store"
)

// Deps are the long-lived resources the server runs on. Cache may be nil.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Sessions auth.SessionStore
	Cache    *cache.Client
}

// New builds the services and handlers and registers every route.
func New(d Deps) *echo.Echo {
	cfg := d.Config
	st := d.Store

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)

	// Initialize services
	authService := service.NewAuthService(st, jwtService, d.Sessions)
	userService := service.NewUserService(st, d.Sessions)
	bookService := service.NewBookService(st, d.Cache)
	authorService := service.NewAuthorService(st, d.Cache)
	categoryService := service.NewCategoryService(st, d.Cache)
	publisherService := service.NewPublisherService(st, d.Cache)
	loanService := service.NewLoanService(st, d.Cache)
	reservationService := service.NewReservationService(st)
	reviewService := service.NewReviewService(st)
	settingsService := service.NewSettingsService(st)
	connectionLogService := service.NewConnectionLogService(st)
	dashboardService := service.NewDashboardService(st)
	seedService := service.NewSeedService(st)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, authService, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Users:        handler.NewUserHandler(userService),
		Books:        handler.NewBookHandler(bookService),
		Authors:      handler.NewAuthorHandler(authorService),
		Categories:   handler.NewCategoryHandler(categoryService),
		Publishers:   handler.NewPublisherHandler(publisherService),
		Loans:        handler.NewLoanHandler(loanService),
		Reservations: handler.NewReservationHandler(reservationService),
		Reviews:      handler.NewReviewHandler(reviewService),
		Admin:        handler.NewAdminHandler(settingsService, connectionLogService, dashboardService, seedService),
	})
	return e
}
