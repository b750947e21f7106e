// Package server provides the HTTP server for the tictoc user API.
//
// The server routes requests with gorilla/mux and wraps the router with
// gorilla/handlers for access logging and panic recovery.
//
// # Server Setup
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.NewServer(db, cfg, "0.0.0.0", "3000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: Database connection
//   - UsersStore, HealthStore: data access used by the endpoints
//
// The configuration is held atomically so a reload can replace it while
// requests are in flight; Issuer derives the token signer from it.
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - GET  /users - List users
//   - POST /users/create - Create a user
//   - POST /users/login - Exchange email and password for a token
//   - GET  /whoami - Token introspection
//   - GET  /, GET /health - Status
package server
