// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/service"
	"github.com/tapcard/internal/types"
)

// headerUserID carries the caller identity resolved by the external auth
// collaborator in front of this service.
const headerUserID = "X-User-ID"

// Service interfaces for dependency injection and testing

// ProfileServiceInterface defines the interface for profile operations
type ProfileServiceInterface interface {
	Save(ctx context.Context, userID string, input *service.SaveProfileInput) (*models.Profile, error)
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	GetPublicByID(ctx context.Context, id int32) (*models.Profile, error)
	GetPublicByNFCTag(ctx context.Context, tagID string) (*models.Profile, error)
}

// UserServiceInterface defines the interface for user identity operations
type UserServiceInterface interface {
	Upsert(ctx context.Context, userID string, input *service.UpsertUserInput) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
}

// ConnectionServiceInterface defines the interface for connection operations
type ConnectionServiceInterface interface {
	Create(ctx context.Context, fromUserID string, input *service.CreateConnectionInput) (*models.Connection, error)
	ListFor(ctx context.Context, userID string) ([]*models.ConnectionWithTarget, error)
	ToggleFavorite(ctx context.Context, userID string, connectionID int32) error
}

// ViewServiceInterface defines the interface for view recording operations
type ViewServiceInterface interface {
	Record(ctx context.Context, profileID int32, input *service.RecordViewInput) (*models.ProfileView, error)
	ListFor(ctx context.Context, profileID int32) ([]*models.ProfileView, error)
}

// AnalyticsServiceInterface defines the interface for analytics operations
type AnalyticsServiceInterface interface {
	Stats(ctx context.Context, userID string) (*service.DashboardStats, error)
	ProfessionBreakdown(ctx context.Context, profileID int32) ([]types.ProfessionCount, error)
}

// ScanResolverInterface defines the interface for scan token resolution
type ScanResolverInterface interface {
	Resolve(ctx context.Context, token string) (*models.Profile, error)
}

// Server represents the HTTP API server.
type Server struct {
	router            *mux.Router
	httpServer        *http.Server
	profileService    ProfileServiceInterface
	userService       UserServiceInterface
	connectionService ConnectionServiceInterface
	viewService       ViewServiceInterface
	analyticsService  AnalyticsServiceInterface
	scanResolver      ScanResolverInterface
	logger            *logging.Logger
	config            *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// Services bundles the collaborators the server exposes over HTTP.
type Services struct {
	Profiles    ProfileServiceInterface
	Users       UserServiceInterface
	Connections ConnectionServiceInterface
	Views       ViewServiceInterface
	Analytics   AnalyticsServiceInterface
	Scans       ScanResolverInterface
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, services *Services, logger *logging.Logger) *Server {
	s := &Server{
		router:            mux.NewRouter(),
		profileService:    services.Profiles,
		userService:       services.Users,
		connectionService: services.Connections,
		viewService:       services.Views,
		analyticsService:  services.Analytics,
		scanResolver:      services.Scans,
		logger:            logger,
		config:            config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter)) // Rate limiting after CORS
	s.router.Use(CompressionMiddleware)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Auth endpoints
	api.HandleFunc("/auth/user", s.handleGetCurrentUser).Methods("GET")
	api.HandleFunc("/auth/user", s.handleUpsertUser).Methods("POST")

	// Profile endpoints
	api.HandleFunc("/profile", s.handleGetOwnProfile).Methods("GET")
	api.HandleFunc("/profile", s.handleSaveProfile).Methods("POST")
	api.HandleFunc("/profile/nfc/{tagId}", s.handleGetProfileByNFCTag).Methods("GET")
	api.HandleFunc("/profile/{id:[0-9]+}", s.handleGetProfileByID).Methods("GET")
	api.HandleFunc("/profile/{id:[0-9]+}/view", s.handleRecordView).Methods("POST")

	// Connection endpoints
	api.HandleFunc("/connections", s.handleListConnections).Methods("GET")
	api.HandleFunc("/connections", s.handleCreateConnection).Methods("POST")
	api.HandleFunc("/connections/{id:[0-9]+}/favorite", s.handleToggleFavorite).Methods("PATCH")

	// Scan endpoints
	api.HandleFunc("/scan/resolve", s.handleResolveScan).Methods("POST")

	// Analytics endpoints
	api.HandleFunc("/analytics/stats", s.handleAnalyticsStats).Methods("GET")
	api.HandleFunc("/analytics/views/{profileId:[0-9]+}", s.handleAnalyticsViews).Methods("GET")
	api.HandleFunc("/analytics/professions/{profileId:[0-9]+}", s.handleAnalyticsProfessions).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tapcard",
	})
}

// handleMethodNotAllowed responds 405 with an Allow header listing the
// methods registered for the matched path.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	allowed := s.allowedMethods(r)
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (s *Server) allowedMethods(r *http.Request) []string {
	seen := make(map[string]bool)

	s.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, method := range methods {
			probe := r.Clone(r.Context())
			probe.Method = method
			var match mux.RouteMatch
			if route.Match(probe, &match) {
				seen[method] = true
			}
		}
		return nil
	})

	allowed := make([]string, 0, len(seen))
	for method := range seen {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	return allowed
}

// callerID extracts the caller identity from the request. The second result
// is false when no identity header is present.
func callerID(r *http.Request) (string, bool) {
	userID := r.Header.Get(headerUserID)
	return userID, userID != ""
}

// requireCaller resolves the caller identity or responds 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := callerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
