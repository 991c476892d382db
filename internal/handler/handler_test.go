package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kubex/internal/metrics"
	"github.com/hitoshi/kubex/internal/middleware"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/repository"
	"github.com/hitoshi/kubex/internal/security"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
	"github.com/hitoshi/kubex/internal/wizard"
)

// --- バックエンドAPIのモック ---

type fakeBackend struct {
	mu     sync.Mutex
	tokens []string

	loginFn             func(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error)
	registerFn          func(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error)
	upsertProfileFn     func(ctx context.Context, req model.ProfileRequest) (*model.Profile, error)
	createBeneficiaryFn func(ctx context.Context, req model.BeneficiaryRequest) (*model.Beneficiary, error)
	listBeneficiariesFn func(ctx context.Context) ([]model.Beneficiary, error)
	getQuoteFn          func(ctx context.Context, req model.QuoteRequest) (*model.Quote, error)
	createTransferFn    func(ctx context.Context, req model.TransferRequest) (*model.Transfer, error)
	listTransfersFn     func(ctx context.Context) ([]model.Transfer, error)
}

// record はリクエストコンテキストのBearerトークンを記録する。
func (f *fakeBackend) record(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, session.TokenFromContext(ctx))
}

func (f *fakeBackend) seenTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *fakeBackend) Login(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, req)
	}
	return &model.AuthResponse{Token: "token-abc", Email: req.Email, Role: "CUSTOMER"}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return &model.AuthResponse{Token: "token-new", Email: req.Email, Role: "CUSTOMER"}, nil
}

func (f *fakeBackend) UpsertProfile(ctx context.Context, req model.ProfileRequest) (*model.Profile, error) {
	f.record(ctx)
	if f.upsertProfileFn != nil {
		return f.upsertProfileFn(ctx, req)
	}
	return &model.Profile{ProfileRequest: req, ID: 1, KYCStatus: "PENDING"}, nil
}

func (f *fakeBackend) CreateBeneficiary(ctx context.Context, req model.BeneficiaryRequest) (*model.Beneficiary, error) {
	f.record(ctx)
	if f.createBeneficiaryFn != nil {
		return f.createBeneficiaryFn(ctx, req)
	}
	return &model.Beneficiary{BeneficiaryRequest: req, ID: 42}, nil
}

func (f *fakeBackend) ListBeneficiaries(ctx context.Context) ([]model.Beneficiary, error) {
	f.record(ctx)
	if f.listBeneficiariesFn != nil {
		return f.listBeneficiariesFn(ctx)
	}
	return []model.Beneficiary{}, nil
}

func (f *fakeBackend) GetQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	f.record(ctx)
	if f.getQuoteFn != nil {
		return f.getQuoteFn(ctx, req)
	}
	return &model.Quote{
		QuoteRequest: req,
		TargetAmount: req.SourceAmount.Mul(decimal.RequireFromString("83.12")),
		Rate:         decimal.RequireFromString("83.12"),
		AuditID:      "audit-1",
	}, nil
}

func (f *fakeBackend) CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error) {
	f.record(ctx)
	if f.createTransferFn != nil {
		return f.createTransferFn(ctx, req)
	}
	return &model.Transfer{
		ID:             7,
		BeneficiaryID:  req.BeneficiaryID,
		SourceCountry:  req.SourceCountry,
		TargetCountry:  req.TargetCountry,
		SourceCurrency: req.SourceCurrency,
		TargetCurrency: req.TargetCurrency,
		SourceAmount:   req.SourceAmount,
		TargetAmount:   req.TargetAmount,
		Status:         "PENDING",
		CreatedAt:      model.Timestamp{Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
	}, nil
}

func (f *fakeBackend) ListTransfers(ctx context.Context) ([]model.Transfer, error) {
	f.record(ctx)
	if f.listTransfersFn != nil {
		return f.listTransfersFn(ctx)
	}
	return []model.Transfer{}, nil
}

// --- テスト用サーバー ---

type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	repo    *repository.MemorySessionRepo
	backend *fakeBackend
}

type response struct {
	status   int
	location string
	body     string
}

func newTestEnv(t *testing.T, backend *fakeBackend) *testEnv {
	t.Helper()

	repo := repository.NewMemorySessionRepo()
	sessions := session.NewManager(repo, metrics.Nop{}, session.Config{MaxAge: 3600})
	controller := wizard.NewController(backend, wizard.NewTracker(), metrics.Nop{})
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	sanitizer := security.NewInputSanitizer()
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(6000, 6000))
	t.Cleanup(limiter.Stop)
	cookie := CookieConfig{}

	router := NewRouter(&RouterDeps{
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		RateLimiter: limiter,
		Sessions:    sessions,
		Auth:        NewAuthHandler(backend, sessions, controller, sanitizer, renderer, cookie),
		Send:        NewSendHandler(controller, sessions, sanitizer, renderer, cookie),
		Transfers:   NewTransferHandler(backend, sessions, renderer, cookie),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{t: t, server: server, client: client, repo: repo, backend: backend}
}

func (e *testEnv) do(req *http.Request) response {
	e.t.Helper()
	res, err := e.send(req)
	if err != nil {
		e.t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	return res
}

// send はリクエストを送信して応答を読み取る。別のゴルーチンからも呼び出せる。
func (e *testEnv) send(req *http.Request) (response, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, err
	}
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}, nil
}

func (e *testEnv) get(path string) response {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		e.t.Fatalf("NewRequest() error = %v", err)
	}
	return e.do(req)
}

// post はCSRFトークンを付けてフォームを送信する。
func (e *testEnv) post(path string, values url.Values) response {
	e.t.Helper()
	if values == nil {
		values = url.Values{}
	}
	values.Set(middleware.CSRFFieldName, e.csrfToken())
	return e.postRaw(path, values)
}

// postRaw はフォームをそのまま送信する。
func (e *testEnv) postRaw(path string, values url.Values) response {
	e.t.Helper()
	return e.do(e.formRequest(path, values))
}

// postAsync は別のゴルーチンでフォームを送信し、応答をチャネルで返す。
// csrfTokenは呼び出し元のゴルーチンで取得しておく。
func (e *testEnv) postAsync(path string, values url.Values, csrfToken string) <-chan response {
	values.Set(middleware.CSRFFieldName, csrfToken)
	req := e.formRequest(path, values)
	ch := make(chan response, 1)
	go func() {
		res, err := e.send(req)
		if err != nil {
			e.t.Errorf("request POST %s failed: %v", path, err)
		}
		ch <- res
	}()
	return ch
}

func (e *testEnv) formRequest(path string, values url.Values) *http.Request {
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		e.t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// csrfToken はCookieJarのCSRFトークンを返す。未発行の場合はログイン画面を取得して発行させる。
func (e *testEnv) csrfToken() string {
	e.t.Helper()
	if token := e.cookie("csrf_token"); token != "" {
		return token
	}
	e.get("/login")
	token := e.cookie("csrf_token")
	if token == "" {
		e.t.Fatal("csrf_token cookie was not issued")
	}
	return token
}

func (e *testEnv) cookie(name string) string {
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// login はログインして送金画面へのリダイレクトを確認する。
func (e *testEnv) login() {
	e.t.Helper()
	res := e.post("/login", url.Values{"email": {"jane@example.com"}, "password": {"secret"}})
	if res.status != http.StatusSeeOther || res.location != "/send" {
		e.t.Fatalf("login: status = %d, location = %q, want 303 /send", res.status, res.location)
	}
}

func profileForm() url.Values {
	return url.Values{
		"firstName":          {"Jane"},
		"lastName":           {"Doe"},
		"dateOfBirth":        {"1990-01-31"},
		"countryOfResidence": {"us"},
		"addressLine1":       {"1 Main St"},
		"city":               {"Springfield"},
		"postalCode":         {"12345"},
	}
}

func beneficiaryForm() url.Values {
	return url.Values{
		"fullName":            {"Ravi Kumar"},
		"country":             {"IN"},
		"bankName":            {"State Bank"},
		"accountNumber":       {"1234567890"},
		"routingCode":         {"SBIN0000001"},
		"payoutMethod":        {"LOCAL"},
		"destinationCurrency": {"inr"},
	}
}

func quoteForm(amount string) url.Values {
	return url.Values{
		"sourceCountry":  {"US"},
		"targetCountry":  {"IN"},
		"sourceCurrency": {"USD"},
		"targetCurrency": {"INR"},
		"sourceAmount":   {amount},
	}
}

// reachReview はプロフィールから見積もりまで送信して確認ステップに進める。
func (e *testEnv) reachReview() {
	e.t.Helper()
	for _, step := range []struct {
		path   string
		values url.Values
	}{
		{"/send/profile", profileForm()},
		{"/send/beneficiary", beneficiaryForm()},
		{"/send/quote", quoteForm("100")},
	} {
		res := e.post(step.path, step.values)
		if res.status != http.StatusSeeOther || res.location != "/send" {
			e.t.Fatalf("POST %s: status = %d, location = %q, want 303 /send", step.path, res.status, res.location)
		}
	}
}
