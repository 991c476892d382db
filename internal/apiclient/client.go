// Package apiclient はKubexバックエンドAPIのクライアントを提供する。
// 各メソッドは型付きのリクエストを送り、型付きのレスポンスを返すだけで、
// リトライやエラーの解釈は行わない。エラーは呼び出し元にそのまま返す。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/kubex/internal/metrics"
)

const (
	// maxErrorBodySize はエラーレスポンスから読み取るボディの上限。
	maxErrorBodySize = 4096
	userAgent        = "Kubex-Web/1.0"
)

// TokenFunc はリクエストコンテキストから送信に使うBearerトークンを取り出す。
// トークンがない場合は空文字を返す。
type TokenFunc func(ctx context.Context) string

// Config はClientの設定。
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    metrics.Recorder
	// Token は全リクエストの送信前に呼ばれ、値があればAuthorizationヘッダーに付与する。
	Token TokenFunc
}

// Client はKubexバックエンドAPIのクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.Recorder
	token      TokenFunc
}

// NewClient はClientの新しいインスタンスを生成する。
// 未指定の依存はデフォルト値（30秒タイムアウトのhttp.Client、slog.Default、メトリクス無効）で補う。
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		token:      cfg.Token,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if c.token == nil {
		c.token = func(context.Context) string { return "" }
	}
	return c
}

// do は1回のHTTP呼び出しを行う。inがnilの場合はボディを送らない。
// outがnilの場合はレスポンスボディを読み捨てる。
func (c *Client) do(ctx context.Context, endpoint, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// リクエスト時フック: セッションのBearerトークンを付与する
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPICall(endpoint, 0, time.Since(start))
		c.logger.ErrorContext(ctx, "backend API call failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordAPICall(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		apiErr := &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
		c.logger.WarnContext(ctx, "backend API returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode backend API response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}
