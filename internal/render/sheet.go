package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
)

// Fill and font color keys understood by downstream document writers
const (
	ColorRed             = "FF0000"
	ColorOrange          = "FFC000"
	ColorYellow          = "FFFF00"
	ColorGreen           = "92D050"
	ColorBlue            = "0000FF"
	ColorBlack           = "000000"
	ColorAllTimeHigh     = ColorRed
	ColorNearAllTimeHigh = ColorOrange
	ColorWeek52High      = ColorYellow
	ColorNearWeek52High  = ColorGreen
)

// Milestone display labels (우선순위: 역신 > 역근 > 52신 > 52근)
const (
	labelAllTimeHigh     = "역·신"
	labelNearAllTimeHigh = "역·근"
	labelWeek52High      = "52·신"
	labelNearWeek52High  = "52·근"
)

const koreanWeekdays = "일월화수목금토"

// Cell is one abstract output cell: coordinates, text and color tags
type Cell struct {
	Column    string `json:"col"`
	Row       int    `json:"row"`
	Text      string `json:"text"`
	Fill      string `json:"fill,omitempty"`
	FontColor string `json:"font_color,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
}

// Sheet is one report date's rendered cell grid
type Sheet struct {
	Title string `json:"title"` // MMDD, 시트 이름 규칙
	Date  string `json:"date"`
	Cells []Cell `json:"cells"`
}

// segmentLayout addresses one segment's column block in the sheet
type segmentLayout struct {
	RankCol      string
	StockCol     string
	ValueCol     string
	MilestoneCol string
	StartRow     int
}

// layoutMap mirrors the workbook template: four segment blocks side by side,
// data starting at row 5.
var layoutMap = map[string]segmentLayout{
	"KOSPI_foreigner":     {RankCol: "D", StockCol: "E", ValueCol: "F", MilestoneCol: "G", StartRow: 5},
	"KOSPI_institutions":  {RankCol: "H", StockCol: "I", ValueCol: "J", MilestoneCol: "K", StartRow: 5},
	"KOSDAQ_foreigner":    {RankCol: "M", StockCol: "N", ValueCol: "O", MilestoneCol: "P", StartRow: 5},
	"KOSDAQ_institutions": {RankCol: "Q", StockCol: "R", ValueCol: "S", MilestoneCol: "T", StartRow: 5},
}

// SheetRenderer renders annotated segment reports into an abstract cell
// grid, serialized as JSON. Concrete document mechanics (workbook files,
// column widths) live downstream.
type SheetRenderer struct {
	pairingSuffix string
}

// NewSheetRenderer creates a sheet renderer
func NewSheetRenderer(pairingSuffix string) *SheetRenderer {
	return &SheetRenderer{pairingSuffix: pairingSuffix}
}

// Render implements contracts.Renderer
func (r *SheetRenderer) Render(date time.Time, segments []contracts.SegmentReport) ([]byte, error) {
	sheet := Sheet{
		Title: date.Format("0102"),
		Date:  date.Format("2006-01-02"),
	}

	sheet.Cells = append(sheet.Cells, r.headerCells(date)...)

	for _, seg := range segments {
		layout, ok := layoutMap[seg.Segment.Key()]
		if !ok {
			return nil, fmt.Errorf("no layout for segment %s", seg.Segment.Key())
		}

		for i, entry := range seg.Entries {
			row := layout.StartRow + i
			sheet.Cells = append(sheet.Cells, r.entryCells(layout, row, entry)...)
		}
	}

	return json.Marshal(sheet)
}

// headerCells writes the month/day/weekday header block
func (r *SheetRenderer) headerCells(date time.Time) []Cell {
	weekday := string([]rune(koreanWeekdays)[int(date.Weekday())])
	return []Cell{
		{Column: "A", Row: 3, Text: fmt.Sprintf("%d 月", int(date.Month()))},
		{Column: "A", Row: 5, Text: fmt.Sprintf("%d 日", date.Day())},
		{Column: "B", Row: 5, Text: weekday},
	}
}

// entryCells renders one annotated entry into its rank/stock/value/milestone cells
func (r *SheetRenderer) entryCells(layout segmentLayout, row int, entry contracts.AnnotatedEntry) []Cell {
	cells := make([]Cell, 0, 4)

	cells = append(cells, r.rankChangeCell(layout.RankCol, row, entry.Change))

	stockCell := Cell{Column: layout.StockCol, Row: row, Text: entry.Name}
	if entry.Paired {
		stockCell.Text = entry.Name + r.pairingSuffix
	}
	if fill := streakFill(entry.Streak); fill != "" {
		stockCell.Fill = fill
	}
	cells = append(cells, stockCell)

	cells = append(cells, Cell{
		Column: layout.ValueCol,
		Row:    row,
		Text:   fmt.Sprintf("%d", entry.NetValue),
	})

	if milestone := milestoneCell(layout.MilestoneCol, row, entry.Milestone); milestone != nil {
		cells = append(cells, *milestone)
	}

	return cells
}

// rankChangeCell renders the movement marker: ✨ 신규, ▲n 상승 (15 이상은
// 굵게), ▼n 하락, - 유지.
func (r *SheetRenderer) rankChangeCell(col string, row int, change contracts.RankChange) Cell {
	cell := Cell{Column: col, Row: row}

	switch {
	case change.New:
		cell.Text = "✨"
	case change.Delta >= 15:
		cell.Text = fmt.Sprintf("▲%d", change.Delta)
		cell.FontColor = ColorRed
		cell.Bold = true
	case change.Delta > 0:
		cell.Text = fmt.Sprintf("▲%d", change.Delta)
		cell.FontColor = ColorRed
	case change.Delta < 0:
		cell.Text = fmt.Sprintf("▼%d", -change.Delta)
		cell.FontColor = ColorBlue
	default:
		cell.Text = "-"
	}

	return cell
}

// streakFill maps a displayed streak to its highlight color.
// 2=초록, 3=노랑, 4=주황, 5 이상=빨강; 1은 강조 없음.
func streakFill(streak int) string {
	switch {
	case streak >= 5:
		return ColorRed
	case streak == 4:
		return ColorOrange
	case streak == 3:
		return ColorYellow
	case streak == 2:
		return ColorGreen
	default:
		return ""
	}
}

// milestoneCell renders the high-price indicator, nil when none
func milestoneCell(col string, row int, m contracts.Milestone) *Cell {
	var text, fill string

	switch m {
	case contracts.MilestoneAllTimeHigh:
		text, fill = labelAllTimeHigh, ColorAllTimeHigh
	case contracts.MilestoneNearAllTimeHigh:
		text, fill = labelNearAllTimeHigh, ColorNearAllTimeHigh
	case contracts.MilestoneWeek52High:
		text, fill = labelWeek52High, ColorWeek52High
	case contracts.MilestoneNearWeek52High:
		text, fill = labelNearWeek52High, ColorNearWeek52High
	default:
		return nil
	}

	return &Cell{Column: col, Row: row, Text: text, Fill: fill}
}
