package naver

import (
	"testing"
	"time"
)

func TestParsePriceResponse(t *testing.T) {
	body := `[
		['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
		["20250711", 61000, 62500, 60800, 62000, 12345678, 52.1],
		["20250714", 62000, 63000, 61500, 62800, 9876543, 52.3]
	]`

	bars, err := parsePriceResponse("005930", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}

	first := bars[0]
	if !first.TradeDate.Equal(time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", first.TradeDate)
	}
	if first.OpenPrice != 61000 || first.HighPrice != 62500 || first.LowPrice != 60800 || first.ClosePrice != 62000 {
		t.Errorf("ohlc = %+v", first)
	}
	if first.Volume != 12345678 {
		t.Errorf("volume = %d", first.Volume)
	}
	if first.StockCode != "005930" {
		t.Errorf("code = %q", first.StockCode)
	}
}

func TestParsePriceResponseMalformed(t *testing.T) {
	if _, err := parsePriceResponse("005930", "not json at all"); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestParsePriceResponseSkipsShortRows(t *testing.T) {
	body := `[
		['날짜', '시가'],
		["20250714", 62000]
	]`

	bars, err := parsePriceResponse("005930", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("bars = %d, want 0", len(bars))
	}
}
