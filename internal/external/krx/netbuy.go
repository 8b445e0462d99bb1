package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
)

// MDCSTAT02401: 투자자별 순매수 상위 종목
const netBuyBld = "dbms/MDC/STAT/standard/MDCSTAT02401"

// KRX 투자자 코드
const (
	investorCodeForeigner    = "9000"
	investorCodeInstitutions = "7050"
)

// netBuyResponse is the getJsonData.cmd payload for MDCSTAT02401
type netBuyResponse struct {
	Output []netBuyRow `json:"output"`
}

type netBuyRow struct {
	StockCode   string `json:"ISU_SRT_CD"`
	StockName   string `json:"ISU_ABBRV"`
	NetBuyValue string `json:"NETBID_TRDVAL"` // 순매수 거래대금, 쉼표 포함
}

// FetchNetBuyRanking implements contracts.MarketDataSource. Entries come
// back sorted descending by net value; an empty list means the portal has
// no data for the date (휴장일 등).
func (c *Client) FetchNetBuyRanking(ctx context.Context, segment contracts.Segment, date time.Time) ([]contracts.RankedEntry, error) {
	form, err := c.netBuyParams(segment, date)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/comm/bldAttendant/getJsonData.cmd"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", c.baseURL+"/contents/MDC/MDI/mdiLoader")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var payload netBuyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	entries := make([]contracts.RankedEntry, 0, len(payload.Output))
	for _, row := range payload.Output {
		if row.StockName == "" {
			continue
		}
		entries = append(entries, contracts.RankedEntry{
			Code:     row.StockCode,
			Name:     row.StockName,
			NetValue: parseCommaInt(row.NetBuyValue),
		})
	}

	// 포털 정렬을 신뢰하지 않고 순매수액 내림차순으로 재정렬
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetValue > entries[j].NetValue
	})

	c.logger.WithFields(map[string]interface{}{
		"segment": segment.Key(),
		"date":    date.Format("2006-01-02"),
		"count":   len(entries),
	}).Debug("Fetched net-buy ranking from KRX")

	return entries, nil
}

// netBuyParams builds the MDCSTAT02401 form parameters for a segment
func (c *Client) netBuyParams(segment contracts.Segment, date time.Time) (url.Values, error) {
	dateStr := date.Format("20060102")

	form := url.Values{
		"bld":         {netBuyBld},
		"locale":      {"ko_KR"},
		"strtDd":      {dateStr},
		"endDd":       {dateStr},
		"share":       {"1"},
		"money":       {"3"},
		"csvxls_isNo": {"false"},
	}

	switch segment.Market {
	case contracts.MarketKOSPI:
		form.Set("mktId", "STK")
	case contracts.MarketKOSDAQ:
		form.Set("mktId", "KSQ")
		form.Set("segTpCd", "ALL")
	default:
		return nil, fmt.Errorf("unsupported market: %s", segment.Market)
	}

	switch segment.Investor {
	case contracts.InvestorForeigner:
		form.Set("invstTpCd", investorCodeForeigner)
	case contracts.InvestorInstitutions:
		form.Set("invstTpCd", investorCodeInstitutions)
	default:
		return nil, fmt.Errorf("unsupported investor type: %s", segment.Investor)
	}

	return form, nil
}

// parseCommaInt parses values like "+1,459,781" or "-1,240,182"
func parseCommaInt(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
