package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/flowrank/backend/internal/contracts"
)

// Naver Finance 시장 코드 (sosok)
var marketCodes = map[contracts.Market]string{
	contracts.MarketKOSPI:  "01",
	contracts.MarketKOSDAQ: "02",
}

// 투자자 구분 코드는 KRX와 동일 체계 사용
var investorCodes = map[contracts.Investor]string{
	contracts.InvestorForeigner:    "9000",
	contracts.InvestorInstitutions: "7050",
}

// FetchNetBuyRanking implements contracts.MarketDataSource by scraping the
// Naver Finance net-buy ranking page. The page shows today's figures only,
// so requests for past dates fail.
func (c *Client) FetchNetBuyRanking(ctx context.Context, segment contracts.Segment, date time.Time) ([]contracts.RankedEntry, error) {
	today := time.Now().Format("2006-01-02")
	if date.Format("2006-01-02") != today {
		return nil, fmt.Errorf("naver ranking only covers the current day, requested %s", date.Format("2006-01-02"))
	}

	sosok, ok := marketCodes[segment.Market]
	if !ok {
		return nil, fmt.Errorf("unsupported market: %s", segment.Market)
	}
	investor, ok := investorCodes[segment.Investor]
	if !ok {
		return nil, fmt.Errorf("unsupported investor type: %s", segment.Investor)
	}

	pageURL := fmt.Sprintf("%s/sise/sise_deal_rank.naver?sosok=%s&investor_gubun=%s", c.baseURL, sosok, investor)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
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

	entries, err := parseRankingHTML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"segment": segment.Key(),
		"count":   len(entries),
		"source":  "finance.naver.com",
	}).Debug("Fetched net-buy ranking from Naver")

	return entries, nil
}

// parseRankingHTML extracts ranked entries from the deal-rank table.
// 컬럼: 순위 | 종목명 | 순매수 금액 | ...
func parseRankingHTML(body io.Reader) ([]contracts.RankedEntry, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var entries []contracts.RankedEntry

	doc.Find("table.type_1 tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		nameCell := cells.Eq(1)
		name := strings.TrimSpace(nameCell.Text())
		if name == "" {
			return
		}

		// 종목 링크에서 코드 추출 (code=005930)
		var code string
		if href, ok := nameCell.Find("a").Attr("href"); ok {
			if idx := strings.Index(href, "code="); idx >= 0 {
				code = href[idx+len("code="):]
				if amp := strings.Index(code, "&"); amp >= 0 {
					code = code[:amp]
				}
			}
		}

		netValue := parseAmount(cells.Eq(2).Text())

		entries = append(entries, contracts.RankedEntry{
			Code:     code,
			Name:     name,
			NetValue: netValue,
		})
	})

	return entries, nil
}

// parseAmount parses amounts like "1,459" or "-1,240"
func parseAmount(s string) int64 {
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
