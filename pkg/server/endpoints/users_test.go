package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tictoc/tictoc/pkg/model"
	"github.com/tictoc/tictoc/pkg/server/store"
	"github.com/tictoc/tictoc/pkg/token"
)

var chad = model.UserView{ID: 1, Name: "Chad", Email: "chad@gmail.com"}

func TestListUsers(t *testing.T) {
	t.Run("returns users in id order", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("ListUsers", mock.Anything, 1000, 0).Return([]model.UserView{
			chad,
			{ID: 2, Name: "User", Email: "user@gmail.com"},
		}, nil)

		rec := ts.do("GET", "/users", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`[{"id":1,"name":"Chad","email":"chad@gmail.com"},{"id":2,"name":"User","email":"user@gmail.com"}]`,
			rec.Body.String())
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("ListUsers", mock.Anything, 1000, 0).Return([]model.UserView{}, nil)

		rec := ts.do("GET", "/users", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", rec.Body.String())
	})

	t.Run("limit and offset are passed through", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("ListUsers", mock.Anything, 10, 20).Return([]model.UserView{}, nil)

		rec := ts.do("GET", "/users?limit=10&offset=20", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("limit is capped", func(t *testing.T) {
		ts := newTestServer(t)
		ts.Config().UserListLimitMax = 5
		ts.users.On("ListUsers", mock.Anything, 5, 0).Return([]model.UserView{}, nil)

		rec := ts.do("GET", "/users?limit=50", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid paging parameters", func(t *testing.T) {
		ts := newTestServer(t)

		for _, target := range []string{"/users?limit=abc", "/users?limit=-1", "/users?offset=x", "/users?offset=-5"} {
			rec := ts.do("GET", target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
			assert.Contains(t, rec.Body.String(), `"error"`)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("ListUsers", mock.Anything, 1000, 0).Return(nil, errors.New("connection refused"))

		rec := ts.do("GET", "/users", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"failed to list users"}`, rec.Body.String())
	})
}

func TestCreateUser(t *testing.T) {
	passwordMatches := func(pw string) interface{} {
		return mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
		})
	}

	t.Run("creates user", func(t *testing.T) {
		ts := newTestServer(t)
		auditLog := captureAudit(t)
		ts.users.On("CreateUser", mock.Anything, "Chad", "chad@gmail.com", passwordMatches("password")).
			Return(&chad, nil)

		rec := ts.do("POST", "/users/create", `{"name":"Chad","email":"chad@gmail.com","password":"password"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"id":1,"name":"Chad","email":"chad@gmail.com"}`, rec.Body.String())
		assert.Contains(t, auditLog.String(), " user-create ")
		assert.Contains(t, auditLog.String(), `result="success"`)
		assert.Contains(t, auditLog.String(), `ip="192.168.1.1"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		ts := newTestServer(t)

		for _, body := range []string{
			`{"email":"chad@gmail.com","password":"password"}`,
			`{"name":"Chad","password":"password"}`,
			`{"name":"Chad","email":"chad@gmail.com"}`,
			`{"name":"  ","email":"chad@gmail.com","password":"password"}`,
		} {
			rec := ts.do("POST", "/users/create", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"name, email and password are required"}`, rec.Body.String())
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/create", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
	})

	t.Run("trailing data after JSON value", func(t *testing.T) {
		for _, body := range []string{
			`{"name":"Chad","email":"chad@gmail.com","password":"password"}garbage`,
			`{"name":"Chad","email":"chad@gmail.com","password":"password"}{}`,
		} {
			ts := newTestServer(t)

			rec := ts.do("POST", "/users/create", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
		}
	})

	t.Run("trailing whitespace is accepted", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/create", "{\"name\":\"\"}\n")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"name, email and password are required"}`, rec.Body.String())
	})

	t.Run("oversized body", func(t *testing.T) {
		ts := newTestServer(t)

		body := `{"name":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
		rec := ts.do("POST", "/users/create", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/create", `{"name":"Chad","email":"chad@gmail.com","password":"short"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"error":"password must be at least 8 characters"}`, rec.Body.String())
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		ts := newTestServer(t)

		body := `{"name":"Chad","email":"chad@gmail.com","password":"` + strings.Repeat("p", 73) + `"}`
		rec := ts.do("POST", "/users/create", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ts := newTestServer(t)
		auditLog := captureAudit(t)
		ts.users.On("CreateUser", mock.Anything, "Chad", "chad@gmail.com", mock.Anything).
			Return(nil, store.ErrEmailTaken)

		rec := ts.do("POST", "/users/create", `{"name":"Chad","email":"chad@gmail.com","password":"password"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"email already registered"}`, rec.Body.String())
		assert.Contains(t, auditLog.String(), `result="failure"`)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("CreateUser", mock.Anything, "Chad", "chad@gmail.com", mock.Anything).
			Return(nil, errors.New("connection refused"))

		rec := ts.do("POST", "/users/create", `{"name":"Chad","email":"chad@gmail.com","password":"password"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("GET is not routed", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("GET", "/users/create", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	stored := &model.User{
		ID:           1,
		Name:         "Chad",
		Email:        "chad@gmail.com",
		PasswordHash: hashFor(t, "password"),
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("issues token for the user view", func(t *testing.T) {
		ts := newTestServer(t)
		auditLog := captureAudit(t)
		ts.users.On("FindByEmail", mock.Anything, "chad@gmail.com").Return(stored, nil)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com","password":"password"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		claims, err := token.NewIssuer([]byte("secret"), 0).Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, chad, claims.User())
		assert.Nil(t, claims.ExpiresAt)

		assert.Contains(t, auditLog.String(), "chad@gmail.com successfully logged in")
	})

	t.Run("token lifetime follows configuration", func(t *testing.T) {
		ts := newTestServer(t)
		ts.Config().TokenTTLSeconds = 60
		ts.users.On("FindByEmail", mock.Anything, "chad@gmail.com").Return(stored, nil)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com","password":"password"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		claims, err := token.NewIssuer([]byte("secret"), 0).Parse(resp.Token)
		require.NoError(t, err)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("unknown email", func(t *testing.T) {
		ts := newTestServer(t)
		auditLog := captureAudit(t)
		ts.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, store.ErrUserNotFound)

		rec := ts.do("POST", "/users/login", `{"email":"nobody@example.com","password":"password"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
		assert.Contains(t, auditLog.String(), "nobody@example.com failed to log in: User not found")
	})

	t.Run("wrong password", func(t *testing.T) {
		ts := newTestServer(t)
		captureAudit(t)
		ts.users.On("FindByEmail", mock.Anything, "chad@gmail.com").Return(stored, nil)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com","password":"wrong-password"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid password"}`, rec.Body.String())
	})

	t.Run("corrupt stored hash", func(t *testing.T) {
		ts := newTestServer(t)
		corrupt := *stored
		corrupt.PasswordHash = "not-a-bcrypt-hash"
		ts.users.On("FindByEmail", mock.Anything, "chad@gmail.com").Return(&corrupt, nil)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com","password":"password"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"email and password are required"}`, rec.Body.String())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/login", `not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trailing data after JSON value", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do("POST", "/users/login", `{"email":"chad@gmail.com","password":"password"}garbage`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
	})
}

func TestParseNonNegative(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"42", 42, false},
		{"-1", 0, true},
		{"1.5", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNonNegative(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got)
	}
}
