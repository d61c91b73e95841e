package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/db/dbtest"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/interfaces"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testOrigin = "http://localhost:5173"

type ServerTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	t := s.T()
	db := dbtest.NewSQLite(t)

	userRepository := user.NewUserRepository(db)
	userService, err := user.NewUserService(userRepository, bcrypt.MinCost)
	require.NoError(t, err)

	jwtManager, err := auth.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
	require.NoError(t, err)
	authService := auth.NewAuthService(userRepository, userService, jwtManager)

	transactionService := application.NewTransactionService(infrastructure.NewTransactionRepository(db), 0)

	server := NewServer(
		db,
		auth.NewHandler(authService, false),
		authService,
		user.NewHandler(userService),
		interfaces.NewTransactionHandler(transactionService, respondJSON, respondError),
		testOrigin,
	)
	server.RegisterRoutes()

	s.server = httptest.NewServer(server)
	t.Cleanup(s.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	s.client = &http.Client{Jar: jar}
}

func (s *ServerTestSuite) do(method, path, body string) (int, map[string]interface{}) {
	t := s.T()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (s *ServerTestSuite) registerAndLogin() {
	status, _ := s.do(http.MethodPost, "/api/v1/user/register",
		`{"username":"jane","name":"Jane","email":"jane@example.com","password":"correct-horse","gender":"female"}`)
	s.Require().Equal(http.StatusCreated, status)

	status, _ = s.do(http.MethodPost, "/api/v1/user/login", `{"email":"jane@example.com","password":"correct-horse"}`)
	s.Require().Equal(http.StatusOK, status)
}

func (s *ServerTestSuite) TestTransactionRoutes_RequireLogin() {
	for _, path := range []string{
		"/api/v1/transaction",
		"/api/v1/transaction/categories",
		"/api/v1/transaction/stats/monthly",
		"/api/v1/user/info",
	} {
		status, body := s.do(http.MethodGet, path, "")
		s.Equal(http.StatusUnauthorized, status, path)
		s.Equal("error", body["status"], path)
	}
}

func (s *ServerTestSuite) TestExpenseLifecycle() {
	s.registerAndLogin()

	status, body := s.do(http.MethodPost, "/api/v1/transaction/add",
		`{"description":"Lunch","paymentType":"card","category":"expense","amount":12.5,"date":"2024-03-05"}`)
	s.Require().Equal(http.StatusCreated, status)
	created := body["data"].(map[string]interface{})
	id := created["id"].(string)
	s.Equal("2024-03-05", created["date"])
	s.Equal(12.5, created["amount"])

	status, body = s.do(http.MethodGet, "/api/v1/transaction", "")
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["data"], 1)

	status, body = s.do(http.MethodGet, "/api/v1/transaction/stats/category", "")
	s.Require().Equal(http.StatusOK, status)
	totals := body["data"].([]interface{})
	s.Require().Len(totals, 1)
	s.Equal("expense", totals[0].(map[string]interface{})["key"])

	status, body = s.do(http.MethodGet, "/api/v1/transaction/stats/monthly", "")
	s.Require().Equal(http.StatusOK, status)
	months := body["data"].([]interface{})
	s.Require().Len(months, 1)
	s.Equal(float64(3), months[0].(map[string]interface{})["month"])

	status, body = s.do(http.MethodGet, "/api/v1/transaction/categories", "")
	s.Require().Equal(http.StatusOK, status)
	s.Equal([]interface{}{"expense", "saving", "investment"}, body["data"])

	status, body = s.do(http.MethodGet, "/api/v1/transaction/payment-types", "")
	s.Require().Equal(http.StatusOK, status)
	s.Equal([]interface{}{"cash", "card", "upi"}, body["data"])

	status, _ = s.do(http.MethodPut, "/api/v1/transaction/"+id, `{"location":"Canteen"}`)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.do(http.MethodGet, "/api/v1/transaction/"+id, "")
	s.Require().Equal(http.StatusOK, status)
	s.Equal("Canteen", body["data"].(map[string]interface{})["location"])

	status, _ = s.do(http.MethodDelete, "/api/v1/transaction/"+id, "")
	s.Require().Equal(http.StatusOK, status)

	status, body = s.do(http.MethodGet, "/api/v1/transaction/"+id, "")
	s.Equal(http.StatusNotFound, status)
	s.Equal("Transaction not found", body["message"])
}

func (s *ServerTestSuite) TestLogoutEndsSession() {
	s.registerAndLogin()

	status, _ := s.do(http.MethodPost, "/api/v1/user/logout", "")
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/v1/transaction", "")
	s.Equal(http.StatusUnauthorized, status)
	status, _ = s.do(http.MethodGet, "/api/v1/user/refresh-token", "")
	s.Equal(http.StatusUnauthorized, status)
}

func (s *ServerTestSuite) TestUnknownPath() {
	status, body := s.do(http.MethodGet, "/api/v1/nope", "")
	s.Equal(http.StatusNotFound, status)
	s.Equal("Path not found", body["message"])
}

func (s *ServerTestSuite) TestReady() {
	status, body := s.do(http.MethodGet, "/api/v1/ready", "")
	s.Equal(http.StatusOK, status)
	s.Equal("ready", body["status"])
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := corsMiddleware(testOrigin)(next)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/transaction", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transaction", nil)
		req.Header.Set("Origin", "http://evil.example")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
