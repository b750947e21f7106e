package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cucumber/godog"

	"github.com/tictoc/tictoc/pkg/token"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	response     *http.Response
	responseBody []byte
	authToken    string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetUsers(ctx)
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.server != nil {
			s.server.Stop()
			s.server = nil
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a tictoc server is running$`, s.aServerIsRunning)
	sc.Step(`^a tictoc server is running with a token lifetime of (\d+) seconds$`, s.aServerIsRunningWithTTL)
	sc.Step(`^a user "([^"]*)" exists with email "([^"]*)" and password "([^"]*)"$`, s.aUserExists)

	// Request steps
	sc.Step(`^I create a user "([^"]*)" with email "([^"]*)" and password "([^"]*)"$`, s.iCreateAUser)
	sc.Step(`^I send a create request with body:$`, s.iSendACreateRequestWithBody)
	sc.Step(`^I log in with email "([^"]*)" and password "([^"]*)"$`, s.iLogIn)
	sc.Step(`^I list users$`, s.iListUsers)
	sc.Step(`^I list users with "([^"]*)"$`, s.iListUsersWith)
	sc.Step(`^I ask who I am$`, s.iAskWhoIAm)
	sc.Step(`^I ask who I am without a token$`, s.iAskWhoIAmWithoutAToken)
	sc.Step(`^I check the health endpoint$`, s.iCheckTheHealthEndpoint)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response JSON should be:$`, s.theResponseJSONShouldBe)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^the response body should be "([^"]*)"$`, s.theResponseBodyShouldBe)
	sc.Step(`^I should receive a valid token for user (\d+) "([^"]*)" "([^"]*)"$`, s.iShouldReceiveAValidToken)
	sc.Step(`^the token should expire$`, s.theTokenShouldExpire)
	sc.Step(`^the database should contain (\d+) users?$`, s.theDatabaseShouldContainUsers)
	sc.Step(`^the stored password for "([^"]*)" should not be "([^"]*)"$`, s.theStoredPasswordShouldNotBe)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	return s.startServer(DefaultServerConfig())
}

func (s *StepsContext) aServerIsRunningWithTTL(seconds int) error {
	cfg := DefaultServerConfig()
	cfg.TokenTTLSeconds = seconds
	return s.startServer(cfg)
}

func (s *StepsContext) startServer(cfg ServerConfig) error {
	instance, err := StartServer(s.tc, cfg)
	if err != nil {
		return err
	}
	s.server = instance
	return nil
}

func (s *StepsContext) aUserExists(name, email, password string) error {
	if err := s.iCreateAUser(name, email, password); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

// Request steps

func (s *StepsContext) iCreateAUser(name, email, password string) error {
	body, _ := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	return s.do("POST", "/users/create", body, "")
}

func (s *StepsContext) iSendACreateRequestWithBody(body *godog.DocString) error {
	return s.do("POST", "/users/create", []byte(body.Content), "")
}

func (s *StepsContext) iLogIn(email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	if err := s.do("POST", "/users/login", body, ""); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(s.responseBody, &resp); err != nil {
			return fmt.Errorf("failed to parse login response: %w", err)
		}
		s.authToken = resp.Token
	}
	return nil
}

func (s *StepsContext) iListUsers() error {
	return s.do("GET", "/users", nil, "")
}

func (s *StepsContext) iListUsersWith(query string) error {
	return s.do("GET", "/users?"+query, nil, "")
}

func (s *StepsContext) iAskWhoIAm() error {
	if s.authToken == "" {
		return errors.New("no token: log in first")
	}
	return s.do("GET", "/whoami", nil, "Bearer "+s.authToken)
}

func (s *StepsContext) iAskWhoIAmWithoutAToken() error {
	return s.do("GET", "/whoami", nil, "")
}

func (s *StepsContext) iCheckTheHealthEndpoint() error {
	return s.do("GET", "/health", nil, "")
}

func (s *StepsContext) do(method, path string, body []byte, authorization string) error {
	if s.server == nil {
		return errors.New("no server running")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseJSONShouldBe(expected *godog.DocString) error {
	var want, got interface{}
	if err := json.Unmarshal([]byte(expected.Content), &want); err != nil {
		return fmt.Errorf("expected JSON is invalid: %w", err)
	}
	if err := json.Unmarshal(s.responseBody, &got); err != nil {
		return fmt.Errorf("response is not JSON: %q", string(s.responseBody))
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("expected JSON %s, got %s", strings.TrimSpace(expected.Content), string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseErrorShouldBe(message string) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return fmt.Errorf("response is not a JSON error: %q", string(s.responseBody))
	}
	if resp.Error != message {
		return fmt.Errorf("expected error %q, got %q", message, resp.Error)
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldBe(expected string) error {
	actual := strings.TrimSpace(string(s.responseBody))
	if actual != expected {
		return fmt.Errorf("expected body %q, got %q", expected, actual)
	}
	return nil
}

func (s *StepsContext) iShouldReceiveAValidToken(id int, name, email string) error {
	claims, err := token.NewIssuer([]byte(s.server.Config.TokenSecret), 0).Parse(s.authToken)
	if err != nil {
		return fmt.Errorf("token did not verify: %w", err)
	}
	if claims.ID != int64(id) || claims.Name != name || claims.Email != email {
		return fmt.Errorf("unexpected claims %+v", claims.User())
	}
	return nil
}

func (s *StepsContext) theTokenShouldExpire() error {
	claims, err := token.NewIssuer([]byte(s.server.Config.TokenSecret), 0).Parse(s.authToken)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return errors.New("token has no exp claim")
	}
	return nil
}

func (s *StepsContext) theDatabaseShouldContainUsers(count int) error {
	total, err := s.tc.Users.CountUsers(context.Background())
	if err != nil {
		return err
	}
	if total != int64(count) {
		return fmt.Errorf("expected %d users, found %d", count, total)
	}
	return nil
}

func (s *StepsContext) theStoredPasswordShouldNotBe(email, password string) error {
	user, err := s.tc.Users.FindByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	if user.PasswordHash == password || !strings.HasPrefix(user.PasswordHash, "$2") {
		return fmt.Errorf("password for %s is not stored as a bcrypt hash", email)
	}
	return nil
}
