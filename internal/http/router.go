package http

import (
	"net/http"
	"time"

	"billing-backend/internal/events"
	"billing-backend/internal/handlers"
	"billing-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	customerHandler *handlers.CustomerHandler,
	salesPersonHandler *handlers.SalesPersonHandler,
	billHandler *handlers.BillHandler,
	stockHandler *handlers.StockHandler,
	settingsHandler *handlers.SettingsHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	responses middleware.ResponseStore,
	idempotencyTTL time.Duration,
	hub *events.Hub,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	authAPI := r.PathPrefix("/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", authHandler.CreateUser).Methods("POST")

	// Products and batches
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.ListProducts).Methods("GET")
	productsAPI.HandleFunc("/low-stock", productHandler.ListLowStock).Methods("GET")
	productsAPI.HandleFunc("/{id:[0-9]+}", productHandler.GetProduct).Methods("GET")
	productsAPI.HandleFunc("/{id:[0-9]+}/batches", productHandler.ListBatches).Methods("GET")
	productsAPI.HandleFunc("/{id:[0-9]+}/batches", productHandler.AddBatch).Methods("POST")

	// Catalog edits are admin only
	productsAdmin := r.PathPrefix("/api/products").Subrouter()
	productsAdmin.Use(authMiddleware.RequireAdmin)
	productsAdmin.HandleFunc("", productHandler.CreateProduct).Methods("POST")
	productsAdmin.HandleFunc("/{id:[0-9]+}", productHandler.UpdateProduct).Methods("PUT")
	productsAdmin.HandleFunc("/{id:[0-9]+}", productHandler.DeleteProduct).Methods("DELETE")

	batchesAPI := r.PathPrefix("/api/batches").Subrouter()
	batchesAPI.Use(authMiddleware.Authenticate)
	batchesAPI.HandleFunc("/expiring", productHandler.ListExpiringBatches).Methods("GET")

	// Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/search", customerHandler.SearchCustomers).Methods("GET")
	customersAPI.HandleFunc("/{id:[0-9]+}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id:[0-9]+}", customerHandler.UpdateCustomer).Methods("PUT")

	// Sales persons
	salesAPI := r.PathPrefix("/api/sales-persons").Subrouter()
	salesAPI.Use(authMiddleware.Authenticate)
	salesAPI.HandleFunc("", salesPersonHandler.ListSalesPersons).Methods("GET")

	salesAdmin := r.PathPrefix("/api/sales-persons").Subrouter()
	salesAdmin.Use(authMiddleware.RequireAdmin)
	salesAdmin.HandleFunc("", salesPersonHandler.CreateSalesPerson).Methods("POST")
	salesAdmin.HandleFunc("/{id:[0-9]+}", salesPersonHandler.UpdateSalesPerson).Methods("PUT")

	// Bills
	idempotent := middleware.Idempotency(responses, idempotencyTTL)
	billsAPI := r.PathPrefix("/api/bills").Subrouter()
	billsAPI.Use(authMiddleware.Authenticate)
	billsAPI.Handle("", idempotent(http.HandlerFunc(billHandler.CreateBill))).Methods("POST")
	billsAPI.HandleFunc("", billHandler.ListBills).Methods("GET")
	billsAPI.HandleFunc("/preview", billHandler.PreviewBill).Methods("POST")
	billsAPI.HandleFunc("/number/{number:.+}", billHandler.GetBillByNumber).Methods("GET")
	billsAPI.HandleFunc("/{id:[0-9]+}", billHandler.GetBill).Methods("GET")
	billsAPI.HandleFunc("/{id:[0-9]+}/pdf", billHandler.DownloadPDF).Methods("GET")
	billsAPI.Handle("/{id:[0-9]+}/return", idempotent(http.HandlerFunc(billHandler.ReturnBill))).Methods("POST")

	// Stock movements
	stockAPI := r.PathPrefix("/api/stock").Subrouter()
	stockAPI.Use(authMiddleware.Authenticate)
	stockAPI.HandleFunc("/adjust", stockHandler.AdjustStock).Methods("POST")
	stockAPI.HandleFunc("/history", stockHandler.ListStockHistory).Methods("GET")

	// Company settings
	settingsAPI := r.PathPrefix("/api/settings/company").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", settingsHandler.GetCompanySettings).Methods("GET")

	settingsAdmin := r.PathPrefix("/api/settings/company").Subrouter()
	settingsAdmin.Use(authMiddleware.RequireAdmin)
	settingsAdmin.HandleFunc("", settingsHandler.UpdateCompanySettings).Methods("PUT")

	// Live bill and inventory events
	r.HandleFunc("/ws", hub.ServeWS)

	// Health endpoints (no auth)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
