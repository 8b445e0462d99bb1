package naver

import (
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/httputil"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// Client fetches data from Naver Finance. Used as a fallback ranking
// source when the KRX portal is unavailable, and for daily price backfill.
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Naver Finance client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Naver.BaseURL,
	}
}
