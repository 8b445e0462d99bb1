package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// PriceBar is one daily OHLCV row from the chart API
type PriceBar struct {
	StockCode  string
	TradeDate  time.Time
	OpenPrice  int64
	HighPrice  int64
	LowPrice   int64
	ClosePrice int64
	Volume     int64
}

// FetchDailyPrices fetches daily price bars for a stock from the Naver
// chart API. Used to backfill data.daily_prices for milestone lookbacks.
// ⭐ SSOT: 가격 백필 호출은 이 함수에서만
func (c *Client) FetchDailyPrices(ctx context.Context, stockCode string, from, to time.Time) ([]PriceBar, error) {
	fullURL := fmt.Sprintf(
		"https://fchart.stock.naver.com/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		stockCode, from.Format("20060102"), to.Format("20060102"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	bars, err := parsePriceResponse(stockCode, string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(bars),
	}).Debug("Fetched daily prices")
	return bars, nil
}

// parsePriceResponse parses the chart API payload. The API returns a
// quasi-JSON array with single quotes.
func parsePriceResponse(stockCode, body string) ([]PriceBar, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err != nil {
		return nil, err
	}

	var bars []PriceBar
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // 헤더 행
		}

		dateStr, ok := row[0].(string)
		if !ok || len(dateStr) != 8 {
			continue
		}

		tradeDate, err := time.Parse("20060102", dateStr)
		if err != nil {
			continue
		}

		bars = append(bars, PriceBar{
			StockCode:  stockCode,
			TradeDate:  tradeDate,
			OpenPrice:  toInt64(row[1]),
			HighPrice:  toInt64(row[2]),
			LowPrice:   toInt64(row[3]),
			ClosePrice: toInt64(row[4]),
			Volume:     toInt64(row[5]),
		})
	}
	return bars, nil
}

// toInt64 converts chart API cell values to int64
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}
