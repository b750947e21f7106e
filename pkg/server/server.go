package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/tictoc/tictoc/pkg/config"
	"github.com/tictoc/tictoc/pkg/server/store"
	gormstore "github.com/tictoc/tictoc/pkg/server/store/gorm"
	"github.com/tictoc/tictoc/pkg/token"
)

// Version is reported by GET /. Overridden at build time with -ldflags.
var Version = "0.1.0"

type Server struct {
	Router *mux.Router
	DB     *gorm.DB

	UsersStore  store.UsersStore
	HealthStore store.HealthStore

	config atomic.Pointer[config.Config]
	srv    *http.Server
}

func NewServer(
	db *gorm.DB,
	cfg *config.Config,
	host string,
	port string,
) *Server {
	router := mux.NewRouter()
	srv := &http.Server{
		Handler: handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
			handlers.LoggingHandler(os.Stdout, router),
		),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	s := &Server{
		Router:      router,
		DB:          db,
		UsersStore:  gormstore.NewUsersStore(db),
		HealthStore: gormstore.NewHealthStore(db),
		srv:         srv,
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s.config.Store(cfg)
	return s
}

// Config returns the configuration currently in effect.
func (s *Server) Config() *config.Config {
	return s.config.Load()
}

// SetConfig swaps the configuration used by subsequent requests.
func (s *Server) SetConfig(cfg *config.Config) {
	s.config.Store(cfg)
}

// Issuer returns a token issuer built from the current configuration.
func (s *Server) Issuer() *token.Issuer {
	cfg := s.Config()
	return token.NewIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL())
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start blocks serving requests. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Serve accepts connections on l. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
