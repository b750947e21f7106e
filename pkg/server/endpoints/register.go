package endpoints

import (
	"github.com/tictoc/tictoc/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
}
