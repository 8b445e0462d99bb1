package krx

import (
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/httputil"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// Client fetches investor net-buy data from the KRX data portal
// ⭐ SSOT: KRX 데이터포털 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new KRX client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.KRX.BaseURL,
	}
}
