package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/events"
	"tournament-arena/internal/models"
	"tournament-arena/internal/payment"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/services"
	"tournament-arena/internal/testutil"
)

const (
	identitySecret = "handler-test-secret"
	webhookSecret  = "hook-secret"
	webhookHeader  = "X-Webhook-Secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct{}

func (stubGateway) CreateCharge(_ context.Context, _ payment.ChargeRequest) (*payment.ChargeResponse, error) {
	return &payment.ChargeResponse{Status: true, PaymentURL: "https://pay.example.com/c/xyz"}, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repo := repository.NewRepository(db)
	publisher := events.NewNoopPublisher()

	userService := services.NewUserService(repo, nil)
	tournamentService := services.NewTournamentService(repo)
	ledger := services.NewLedgerService(repo, publisher)
	paymentService := services.NewPaymentService(repo, stubGateway{}, publisher, services.PaymentSettings{
		MinDeposit: decimal.NewFromInt(10),
	})
	adminService := services.NewAdminService(repo)
	alertService := services.NewAlertService(repo)

	router := NewRouter(Handlers{
		Auth:       NewAuthHandler(userService),
		User:       NewUserHandler(userService, tournamentService),
		Tournament: NewTournamentHandler(tournamentService, ledger),
		Wallet:     NewWalletHandler(paymentService, ledger),
		Webhook:    NewWebhookHandler(paymentService, webhookSecret, webhookHeader),
		Alert:      NewAlertHandler(alertService),
		Admin:      NewAdminHandler(adminService, tournamentService, alertService, ledger),
	}, auth.NewTokenVerifier(identitySecret, "", ""), []string{"http://localhost:3000"})

	return &testServer{router: router, db: db}
}

func tokenFor(t *testing.T, uid string) string {
	t.Helper()
	token, err := auth.GenerateToken(identitySecret, "", "", auth.Identity{UID: uid, Email: uid + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and decodes the JSON response into out when non-nil
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

type joinResponse struct {
	Success bool `json:"success"`
	Data    struct {
		AlreadyJoined bool            `json:"already_joined"`
		Balance       decimal.Decimal `json:"account_balance"`
	} `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil, nil, nil))
}

func TestJoinTournamentFlow(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", 100)
	testutil.CreateUser(t, s.db, "bob", 30)
	tournament := testutil.CreateTournament(t, s.db, 60)
	path := fmt.Sprintf("/api/tournaments/%d/join", tournament.ID)

	var joined joinResponse
	code := s.do(t, http.MethodPost, path, tokenFor(t, "alice"), gin.H{"game_name": "AliceGG"}, nil, &joined)
	assert.Equal(t, http.StatusCreated, code)
	assert.False(t, joined.Data.AlreadyJoined)
	assert.True(t, decimal.NewFromInt(40).Equal(joined.Data.Balance))

	var again joinResponse
	code = s.do(t, http.MethodPost, path, tokenFor(t, "alice"), gin.H{"game_name": "AliceGG"}, nil, &again)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, again.Data.AlreadyJoined)
	assert.True(t, decimal.NewFromInt(40).Equal(again.Data.Balance))

	var poor errorResponse
	code = s.do(t, http.MethodPost, path, tokenFor(t, "bob"), gin.H{"game_name": "Bob"}, nil, &poor)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient_balance", poor.Code)

	var missing errorResponse
	code = s.do(t, http.MethodPost, "/api/tournaments/9999/join", tokenFor(t, "alice"), gin.H{"game_name": "A"}, nil, &missing)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "tournament_not_found", missing.Code)

	code = s.do(t, http.MethodPost, path, tokenFor(t, "alice"), gin.H{}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = s.do(t, http.MethodPost, path, "", gin.H{"game_name": "Anon"}, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var players struct {
		Data []models.TournamentPlayer `json:"data"`
	}
	code = s.do(t, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/players", tournament.ID), "", nil, nil, &players)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, players.Data, 1)
	assert.Equal(t, "alice", players.Data[0].UserUID)
}

func TestSyncAndProfile(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "carol")

	var profile struct {
		User models.User `json:"user"`
	}
	code := s.do(t, http.MethodGet, "/api/user/profile", token, nil, nil, &errorResponse{})
	assert.Equal(t, http.StatusNotFound, code)

	code = s.do(t, http.MethodPost, "/auth/sync", token, gin.H{"display_name": "Carol"}, nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code = s.do(t, http.MethodGet, "/api/user/profile", token, nil, nil, &profile)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "carol", profile.User.UID)
	assert.True(t, profile.User.AccountBalance.IsZero())
}

func TestDepositAndWebhook(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", 0)
	token := tokenFor(t, "alice")

	var deposit struct {
		Data services.DepositResult `json:"data"`
	}
	code := s.do(t, http.MethodPost, "/api/wallet/deposit", token, gin.H{"amount": 500}, nil, &deposit)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "https://pay.example.com/c/xyz", deposit.Data.PaymentURL)

	payload := gin.H{
		"status":         "COMPLETED",
		"transaction_id": "gw-100",
		"amount":         500,
		"metadata":       gin.H{"transaction_id": deposit.Data.TransactionID.String(), "user_uid": "alice"},
	}
	secret := map[string]string{webhookHeader: webhookSecret}

	var outcome struct {
		Outcome services.WebhookOutcome `json:"outcome"`
	}
	code = s.do(t, http.MethodPost, "/api/payments/webhook", "", payload, secret, &outcome)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.OutcomeCredited, outcome.Outcome)

	code = s.do(t, http.MethodPost, "/api/payments/webhook", "", payload, secret, &outcome)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.OutcomeAlreadyProcessed, outcome.Outcome)

	assert.True(t, decimal.NewFromInt(500).Equal(testutil.Balance(t, s.db, "alice")))

	var withdraw struct {
		Data services.WithdrawResult `json:"data"`
	}
	code = s.do(t, http.MethodPost, "/api/wallet/withdraw", token, gin.H{"amount": "120.50"}, nil, &withdraw)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.RequireFromString("379.50").Equal(withdraw.Data.Balance))

	var tooMuch errorResponse
	code = s.do(t, http.MethodPost, "/api/wallet/withdraw", token, gin.H{"amount": 1000}, nil, &tooMuch)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient_balance", tooMuch.Code)

	code = s.do(t, http.MethodPost, "/api/wallet/deposit", token, gin.H{"amount": 1}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

type fakeProcessor struct {
	calls int
}

func (p *fakeProcessor) HandleWebhook(_ context.Context, _ *payment.WebhookPayload) (services.WebhookOutcome, error) {
	p.calls++
	return services.OutcomeCredited, nil
}

func TestWebhookHandler_Secret(t *testing.T) {
	processor := &fakeProcessor{}
	router := gin.New()
	router.POST("/webhook", NewWebhookHandler(processor, webhookSecret, webhookHeader).Handle)

	send := func(secret, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set(webhookHeader, secret)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	valid := `{"status":"COMPLETED","metadata":{"transaction_id":"abc"}}`

	assert.Equal(t, http.StatusUnauthorized, send("", valid))
	assert.Equal(t, http.StatusUnauthorized, send("wrong", valid))
	assert.Zero(t, processor.calls, "rejected webhooks must not reach the processor")

	assert.Equal(t, http.StatusBadRequest, send(webhookSecret, `{not json`))
	assert.Equal(t, http.StatusBadRequest, send(webhookSecret, `{"status":"COMPLETED"}`))
	assert.Zero(t, processor.calls)

	assert.Equal(t, http.StatusOK, send(webhookSecret, valid))
	assert.Equal(t, 1, processor.calls)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateAdmin(t, s.db, "root")
	testutil.CreateUser(t, s.db, "alice", 100)
	admin := tokenFor(t, "root")

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/dashboard", tokenFor(t, "alice"), nil, nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/dashboard", tokenFor(t, "stranger"), nil, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/dashboard", "", nil, nil, nil))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/dashboard", admin, nil, nil, nil))

	var created struct {
		Data models.Tournament `json:"data"`
	}
	code := s.do(t, http.MethodPost, "/api/admin/tournaments", admin, gin.H{
		"title":      "Admin Cup",
		"category":   "fighting",
		"date":       time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"entry_fee":  "15",
		"prize_pool": "300",
	}, nil, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.TournamentStatusUpcoming, created.Data.Status)

	code = s.do(t, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/join", created.Data.ID), tokenFor(t, "alice"), gin.H{"game_name": "Ali"}, nil, nil)
	require.Equal(t, http.StatusCreated, code)

	var conflict errorResponse
	code = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/tournaments/%d", created.Data.ID), admin, nil, nil, &conflict)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "tournament_has_players", conflict.Code)

	code = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/tournaments/%d/status", created.Data.ID), admin, gin.H{"status": "completed"}, nil, &conflict)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_status_transition", conflict.Code)

	code = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/tournaments/%d/prize", created.Data.ID), admin, gin.H{"user_uid": "alice", "amount": "100"}, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.NewFromInt(185).Equal(testutil.Balance(t, s.db, "alice")))

	code = s.do(t, http.MethodPost, "/api/admin/users/alice/balance", admin, gin.H{"amount": "-200", "reason": "chargeback"}, nil, &conflict)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient_balance", conflict.Code)

	code = s.do(t, http.MethodPost, "/api/admin/users/alice/balance", admin, gin.H{"amount": "-85", "reason": "chargeback"}, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.NewFromInt(100).Equal(testutil.Balance(t, s.db, "alice")))

	code = s.do(t, http.MethodPut, "/api/admin/users/alice/role", admin, gin.H{"role": "admin"}, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/logs", tokenFor(t, "alice"), nil, nil, nil))

	var alert struct {
		Data models.Alert `json:"data"`
	}
	code = s.do(t, http.MethodPost, "/api/admin/alerts", admin, gin.H{"title": "Heads up", "message": "Finals tonight"}, nil, &alert)
	require.Equal(t, http.StatusCreated, code)

	var active struct {
		Data []models.Alert `json:"data"`
	}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/alerts", "", nil, nil, &active))
	require.Len(t, active.Data, 1)
	assert.Equal(t, "Finals tonight", active.Data[0].Message)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/alerts/%d", alert.Data.ID), admin, nil, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/alerts/%d", alert.Data.ID), admin, nil, nil, nil))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{services.ErrTournamentNotFound, http.StatusNotFound, "tournament_not_found"},
		{services.ErrTransactionNotFound, http.StatusNotFound, "transaction_not_found"},
		{services.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
		{services.ErrTournamentNotJoinable, http.StatusConflict, "tournament_not_joinable"},
		{services.ErrTournamentFull, http.StatusConflict, "tournament_full"},
		{fmt.Errorf("%w: upcoming to completed", services.ErrInvalidStatusTransition), http.StatusConflict, "invalid_status_transition"},
		{services.ErrDuplicatePaymentEvent, http.StatusConflict, "duplicate_payment_event"},
		{fmt.Errorf("%w: timeout", services.ErrPaymentGateway), http.StatusBadGateway, "payment_gateway_error"},
		{&services.ValidationError{Message: "bad"}, http.StatusBadRequest, "invalid_request"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		status, code, message := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
		if status == http.StatusInternalServerError {
			assert.NotContains(t, message, "connection reset")
		}
	}
}
