package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gophora/portal/internal/config"
	"github.com/gophora/portal/internal/dashboard"
	"github.com/gophora/portal/internal/session"
	"github.com/gophora/portal/pkg/geo"
	"github.com/gophora/portal/pkg/gophora"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, api *gophora.Client, geoClient *geo.Client, sessions *session.Manager) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(SessionMiddleware(sessions))
	r.Use(GuardMiddleware)

	values := sessions.Values()
	stats := dashboard.New(api, values, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	homeHandler := NewHomeHandler(api)
	authHandler := NewAuthHandler(api, geoClient, values)
	chatHandler := NewChatHandler(values)
	seekerHandler := NewSeekerHandler(api, values, stats)
	providerHandler := NewProviderHandler(api, stats)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/", homeHandler.Landing).Methods("GET")
	r.HandleFunc("/login", authHandler.LoginForm).Methods("GET")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/register", authHandler.RegisterForm).Methods("GET")
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/chat", chatHandler.Chat).Methods("GET")
	r.HandleFunc("/chat", chatHandler.Send).Methods("POST")

	// Seeker screens; the guard only lets role=seeker sessions through
	seeker := r.PathPrefix("/seeker").Subrouter()
	seeker.HandleFunc("/dashboard", seekerHandler.Dashboard).Methods("GET")
	seeker.HandleFunc("/opportunities", seekerHandler.Opportunities).Methods("GET")
	seeker.HandleFunc("/opportunities/apply", seekerHandler.Apply).Methods("POST")
	seeker.HandleFunc("/applications", seekerHandler.Applications).Methods("GET")
	seeker.HandleFunc("/profile", seekerHandler.Profile).Methods("GET")
	seeker.HandleFunc("/profile", seekerHandler.UpdateProfile).Methods("POST")

	// Provider screens; the guard only lets role=provider sessions through
	provider := r.PathPrefix("/provider").Subrouter()
	provider.HandleFunc("/dashboard", providerHandler.Dashboard).Methods("GET")
	provider.HandleFunc("/opportunities", providerHandler.Opportunities).Methods("GET")
	provider.HandleFunc("/opportunities/{id:[0-9]+}", providerHandler.Update).Methods("POST")
	provider.HandleFunc("/opportunities/{id:[0-9]+}/applications", providerHandler.Applications).Methods("GET")
	provider.HandleFunc("/opportunities/{id:[0-9]+}/delete", providerHandler.ConfirmDelete).Methods("GET")
	provider.HandleFunc("/opportunities/{id:[0-9]+}/delete", providerHandler.Delete).Methods("POST")
	provider.HandleFunc("/create-opportunity", providerHandler.CreateForm).Methods("GET")
	provider.HandleFunc("/create-opportunity", providerHandler.Create).Methods("POST")
	provider.HandleFunc("/profile", providerHandler.Profile).Methods("GET")
	provider.HandleFunc("/profile", providerHandler.UpdateProfile).Methods("POST")
	provider.HandleFunc("/verification", providerHandler.VerifyForm).Methods("GET")
	provider.HandleFunc("/verification", providerHandler.Verify).Methods("POST")

	// Unmatched paths get the not-found screen, with the middleware chain
	// applied so the page still renders session-aware chrome
	r.NotFoundHandler = LoggingMiddleware(RecoveryMiddleware(SessionMiddleware(sessions)(http.HandlerFunc(NotFound))))

	return r
}
