// Package api exposes the HTTP surface of the control plane: operator login
// and CRUD, the agent WebSocket endpoint, the API document, and the embedded
// web UI.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/config"
	"github.com/unpatched/unpatched-server/pkg/database"
	"github.com/unpatched/unpatched-server/pkg/session"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// Server carries the wired dependencies of every handler.
type Server struct {
	cfg        *config.Config
	dbClient   *database.Client
	store      *store.Store
	authorizer *auth.Authorizer
	issuer     *auth.TokenIssuer
	sessions   *session.Manager
	echo       *echo.Echo
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds the API server and registers all routes.
func NewServer(cfg *config.Config, dbClient *database.Client, st *store.Store, authorizer *auth.Authorizer, issuer *auth.TokenIssuer, sessions *session.Manager) *Server {
	s := &Server{
		cfg:        cfg,
		dbClient:   dbClient,
		store:      st,
		authorizer: authorizer,
		issuer:     issuer,
		sessions:   sessions,
		echo:       echo.New(),
		log:        slog.With("component", "api"),
	}
	s.httpServer = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo
	e.Use(securityHeaders())

	tokenRequired := requireToken(s.issuer)

	// Operator login lifecycle.
	e.POST("/api/v1/authorize", s.authorizeHandler)
	e.GET("/logout", s.logoutHandler, tokenRequired)
	e.GET("/loginstatus", s.loginStatusHandler, tokenRequired)

	// Entity CRUD. POST is an upsert on the entity's primary key; DELETE of
	// an absent row succeeds.
	e.GET("/api/v1/hosts", s.listHostsHandler, tokenRequired)
	e.GET("/api/v1/hosts/:id", s.getHostHandler, tokenRequired)
	e.POST("/api/v1/hosts", s.createHostHandler, tokenRequired)
	e.DELETE("/api/v1/hosts/:id", s.deleteHostHandler, tokenRequired)
	e.DELETE("/api/v1/hosts", s.deleteHostsHandler, tokenRequired)

	e.GET("/api/v1/scripts", s.listScriptsHandler, tokenRequired)
	e.GET("/api/v1/scripts/:id", s.getScriptHandler, tokenRequired)
	e.POST("/api/v1/scripts", s.createScriptHandler, tokenRequired)
	e.DELETE("/api/v1/scripts/:id", s.deleteScriptHandler, tokenRequired)
	e.DELETE("/api/v1/scripts", s.deleteScriptsHandler, tokenRequired)

	e.GET("/api/v1/schedules", s.listSchedulesHandler, tokenRequired)
	e.GET("/api/v1/schedules/:id", s.getScheduleHandler, tokenRequired)
	e.POST("/api/v1/schedules", s.createScheduleHandler, tokenRequired)
	e.DELETE("/api/v1/schedules/:id", s.deleteScheduleHandler, tokenRequired)
	e.DELETE("/api/v1/schedules", s.deleteSchedulesHandler, tokenRequired)

	e.GET("/api/v1/executions", s.listExecutionsHandler, tokenRequired)
	e.GET("/api/v1/executions/:id", s.getExecutionHandler, tokenRequired)
	e.POST("/api/v1/executions", s.createExecutionHandler, tokenRequired)
	e.DELETE("/api/v1/executions/:id", s.deleteExecutionHandler, tokenRequired)
	e.DELETE("/api/v1/executions", s.deleteExecutionsHandler, tokenRequired)

	e.GET("/api/v1/users", s.listUsersHandler, tokenRequired)
	e.GET("/api/v1/users/:email", s.getUserHandler, tokenRequired)
	e.POST("/api/v1/users", s.createUserHandler, tokenRequired)
	e.DELETE("/api/v1/users/:email", s.deleteUserHandler, tokenRequired)
	e.DELETE("/api/v1/users", s.deleteUsersHandler, tokenRequired)

	e.POST("/api/v1/unblock/:id", s.unblockHandler, tokenRequired)

	e.GET("/api/v1/health", s.healthHandler)

	// Agent transport. Authentication is the API key header, not a token.
	e.GET("/ws", s.wsHandler)

	// API document and embedded web UI.
	e.GET("/api", s.apiUIHandler)
	e.GET("/api/api.yaml", s.apiSpecHandler)
	e.GET("/*", s.webHandler)
}

// Start serves plain HTTP on addr and blocks until Shutdown or a listener
// error. http.ErrServerClosed is returned as-is so callers can filter it.
func (s *Server) Start(addr string) error {
	s.httpServer.Addr = addr
	return s.httpServer.ListenAndServe()
}

// StartTLS serves HTTPS on addr with the given certificate pair.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	s.httpServer.Addr = addr
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown stops accepting new connections and waits for in-flight requests.
// Open WebSocket sessions are closed by the session manager, not here.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
