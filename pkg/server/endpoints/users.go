package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/tictoc/tictoc/pkg/audit"
	"github.com/tictoc/tictoc/pkg/password"
	"github.com/tictoc/tictoc/pkg/server"
	"github.com/tictoc/tictoc/pkg/server/middleware"
	"github.com/tictoc/tictoc/pkg/server/store"
)

const maxRequestBodyBytes = 1 << 20

// CreateUserRequest is the body of POST /users/create
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token issued on a successful login
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterUsersEndpoints registers the user listing, creation and login endpoints
func RegisterUsersEndpoints(s *server.Server) {
	s.Router.HandleFunc("/users", handleListUsers(s)).Methods("GET")
	s.Router.HandleFunc("/users/create", handleCreateUser(s)).Methods("POST")
	s.Router.HandleFunc("/users/login", handleLogin(s)).Methods("POST")
}

func handleListUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		limit, err := parseNonNegative(query.Get("limit"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		offset, err := parseNonNegative(query.Get("offset"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}

		limitMax := s.Config().UserListLimitMax
		if limit == 0 || limit > limitMax {
			limit = limitMax
		}

		users, err := s.UsersStore.ListUsers(r.Context(), limit, offset)
		if err != nil {
			log.Printf("failed to list users: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to list users")
			return
		}

		respondWithJSON(w, http.StatusOK, users)
	}
}

func handleCreateUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)

		if req.Name == "" || req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "name, email and password are required")
			return
		}

		cfg := s.Config()
		ip := clientIP(r)

		if len(req.Password) < cfg.MinPasswordLength {
			respondWithError(w, http.StatusUnprocessableEntity,
				"password must be at least "+strconv.Itoa(cfg.MinPasswordLength)+" characters")
			return
		}

		hash, err := password.Hash(req.Password, cfg.BcryptCost)
		if errors.Is(err, password.ErrTooLong) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err != nil {
			log.Printf("failed to hash password: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to create user")
			return
		}

		user, err := s.UsersStore.CreateUser(r.Context(), req.Name, req.Email, hash)
		if err != nil {
			audit.Log(audit.UserCreateEvent{
				Email:        req.Email,
				ClientIP:     ip,
				Success:      false,
				ErrorMessage: err.Error(),
			})
			if errors.Is(err, store.ErrEmailTaken) {
				respondWithError(w, http.StatusConflict, err.Error())
				return
			}
			log.Printf("failed to create user: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to create user")
			return
		}

		audit.Log(audit.UserCreateEvent{
			UserID:   user.ID,
			Email:    user.Email,
			ClientIP: ip,
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Email = strings.TrimSpace(req.Email)

		if req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		ip := clientIP(r)
		loginFailed := func(code int, msg string) {
			audit.Log(audit.LoginEvent{
				Email:        req.Email,
				ClientIP:     ip,
				Success:      false,
				ErrorMessage: msg,
			})
			respondWithError(w, code, msg)
		}

		user, err := s.UsersStore.FindByEmail(r.Context(), req.Email)
		if errors.Is(err, store.ErrUserNotFound) {
			loginFailed(http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			log.Printf("failed to look up user: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to log in")
			return
		}

		ok, err := password.Verify(user.PasswordHash, req.Password)
		if err != nil {
			log.Printf("failed to verify password for user %d: %v", user.ID, err)
			respondWithError(w, http.StatusInternalServerError, "failed to log in")
			return
		}
		if !ok {
			loginFailed(http.StatusUnauthorized, "Invalid password")
			return
		}

		signed, err := s.Issuer().Issue(user.View())
		if err != nil {
			log.Printf("failed to issue token: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to log in")
			return
		}

		audit.Log(audit.LoginEvent{
			UserID:   user.ID,
			Email:    user.Email,
			ClientIP: ip,
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, LoginResponse{Token: signed})
	}
}

// decodeBody decodes a JSON request body holding exactly one value into v.
// On failure it writes a 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parseNonNegative(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}

func clientIP(r *http.Request) string {
	if ip := middleware.RemoteIP(r); ip != nil {
		return ip.String()
	}
	return ""
}
