package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/addisfuel/fuelwatch/handlers"
	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
)

// Register sets up all application routes.
func Register(app *handlers.App, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	r.Use(middleware.Recovery(log))
	r.Use(middleware.Security)
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.Middleware)

	// Operational surface, no authentication.
	r.HandleFunc("/healthz", app.Health).Methods("GET")
	r.Handle("/metrics", middleware.MetricsHandler(reg)).Methods("GET")

	// Public routes: signup, login and the read-only portal data.
	r.HandleFunc("/register", app.Register).Methods("POST")
	r.HandleFunc("/login", app.Login).Methods("POST")
	r.HandleFunc("/api/v1/public/stations", app.ListStations).Methods("GET")
	r.HandleFunc("/api/v1/public/stations/geojson", app.StationsGeoJSON).Methods("GET")
	r.HandleFunc("/api/v1/public/stations/{id}", app.GetStation).Methods("GET")
	r.HandleFunc("/api/v1/public/fuel-status", app.ListFuelStatus).Methods("GET")

	// Protected API routes, JWT required.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(app.Tokens.Middleware)

	api.HandleFunc("/profile", app.Profile).Methods("GET")

	registerStationRoutes(api, app)
	registerFuelStatusRoutes(api, app)
	registerReportRoutes(api, app)
	registerNotificationRoutes(api, app)
	registerLogisticsRoutes(api, app)
	registerAnalyticsRoutes(api, app)
	registerAdminRoutes(api, app)

	return r
}

// requires wraps a handler with a role gate.
func requires(h http.HandlerFunc, roles ...models.Role) http.Handler {
	return middleware.RequireRole(roles...)(h)
}

func registerStationRoutes(api *mux.Router, app *handlers.App) {
	api.HandleFunc("/stations", app.ListStations).Methods("GET")
	api.HandleFunc("/stations/geojson", app.StationsGeoJSON).Methods("GET")
	api.HandleFunc("/stations/{id}", app.GetStation).Methods("GET")

	api.Handle("/stations",
		requires(app.CreateStation, models.RoleAdmin)).Methods("POST")
	api.Handle("/stations/{id}",
		requires(app.UpdateStation, models.RoleManager, models.RoleAdmin)).Methods("PUT")
	api.Handle("/stations/{id}",
		requires(app.DeactivateStation, models.RoleAdmin)).Methods("DELETE")
}

func registerFuelStatusRoutes(api *mux.Router, app *handlers.App) {
	api.HandleFunc("/fuel-status", app.ListFuelStatus).Methods("GET")
	api.HandleFunc("/fuel-status/history", app.ListFuelStatusHistory).Methods("GET")

	api.Handle("/fuel-status",
		requires(app.SubmitFuelStatus, models.RoleStaff, models.RoleManager, models.RoleAdmin)).Methods("POST")
	api.Handle("/fuel-status/{id}",
		requires(app.UpdateFuelStatus, models.RoleAdmin)).Methods("PUT")

	api.Handle("/approvals",
		requires(app.ListPendingApprovals, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/approvals/decide",
		requires(app.DecideApproval, models.RoleManager, models.RoleAdmin)).Methods("POST")
}

func registerReportRoutes(api *mux.Router, app *handlers.App) {
	api.HandleFunc("/user-reports", app.CreateUserReport).Methods("POST")
	api.Handle("/user-reports",
		requires(app.ListUserReports, models.RoleStaff, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/user-reports/{id}",
		requires(app.ModerateUserReport, models.RoleStaff, models.RoleManager, models.RoleAdmin)).Methods("PUT")
}

func registerNotificationRoutes(api *mux.Router, app *handlers.App) {
	api.HandleFunc("/notifications", app.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", app.MarkAllNotificationsRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/read", app.MarkNotificationRead).Methods("POST")

	api.HandleFunc("/subscriptions", app.CreateSubscription).Methods("POST")
	api.HandleFunc("/subscriptions", app.ListMySubscriptions).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", app.DeactivateSubscription).Methods("DELETE")
}

func registerLogisticsRoutes(api *mux.Router, app *handlers.App) {
	api.Handle("/trips",
		requires(app.ListTrips, models.RoleLogistics, models.RoleDriver, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/trips",
		requires(app.CreateTrip, models.RoleLogistics, models.RoleAdmin)).Methods("POST")
	api.Handle("/trips/eta",
		requires(app.TripETA, models.RoleStaff, models.RoleLogistics, models.RoleDriver, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/trips/{id}/transition",
		requires(app.TransitionTrip, models.RoleLogistics, models.RoleAdmin)).Methods("POST")

	api.Handle("/tankers",
		requires(app.ListTankers, models.RoleLogistics, models.RoleDriver, models.RoleAdmin)).Methods("GET")
	api.Handle("/tankers",
		requires(app.CreateTanker, models.RoleLogistics, models.RoleAdmin)).Methods("POST")
	api.Handle("/tankers/{id}/location",
		requires(app.UpdateTankerLocation, models.RoleDriver, models.RoleLogistics, models.RoleAdmin)).Methods("POST")
}

func registerAnalyticsRoutes(api *mux.Router, app *handlers.App) {
	api.Handle("/reports",
		requires(app.GenerateReport, models.RoleManager, models.RoleAdmin)).Methods("POST")
	api.Handle("/reports",
		requires(app.ListReports, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/reports/{id}",
		requires(app.GetReport, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/reports/{id}/export/excel",
		requires(app.ExportReportToExcel, models.RoleManager, models.RoleAdmin)).Methods("GET")
	api.Handle("/reports/{id}/export/csv",
		requires(app.ExportReportToCSV, models.RoleManager, models.RoleAdmin)).Methods("GET")
}

func registerAdminRoutes(api *mux.Router, app *handlers.App) {
	admin := api.PathPrefix("/admin").Subrouter()

	admin.Handle("/users",
		requires(app.CreateUser, models.RoleAdmin)).Methods("POST")
	admin.Handle("/announcements",
		requires(app.BroadcastAnnouncement, models.RoleAdmin)).Methods("POST")
	admin.Handle("/fuel-status/refresh-trust",
		requires(app.RefreshTrustScores, models.RoleAdmin)).Methods("POST")
	admin.Handle("/system-logs",
		requires(app.ListSystemLogs, models.RoleAdmin, models.RoleITSupport)).Methods("GET")
	admin.Handle("/audit-logs",
		requires(app.ListAuditLogs, models.RoleAdmin, models.RoleITSupport)).Methods("GET")
}
