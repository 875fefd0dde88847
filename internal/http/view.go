package http

import (
	"sort"

	"ricavi/internal/core"
	"ricavi/internal/services"
)

const (
	chartHeight   = 120
	chartBarWidth = 14
	chartBarGap   = 4
)

type periodLink struct {
	Year  int
	Month int
	Label string
}

func linkOf(p core.Period) periodLink {
	return periodLink{Year: p.Year, Month: int(p.Month), Label: p.Label()}
}

type cellView struct {
	Room string
	Raw  string
}

type dayView struct {
	Day        int
	Cells      []cellView
	Total      string
	Overnights int
	HasRevenue bool
}

type roomTally struct {
	Room  string
	Count int
}

type barView struct {
	Day    int
	X      int
	Y      int
	Height int
	Title  string
}

type chartView struct {
	Width  int
	Height int
	Bars   []barView
}

type summaryView struct {
	Label           string
	Total           string
	Average         string
	Overnights      string
	DaysWithRevenue int
	Rooms           []roomTally
	Chart           chartView
}

type monthPage struct {
	Period periodLink
	Prev   periodLink
	Next   periodLink
	Rooms  []string
	Days   []dayView
	Sum    summaryView
}

type comparePage struct {
	Primary      periodLink
	Other        periodLink
	PrimarySum   summaryView
	OtherSum     summaryView
	TotalDelta   string
	AverageDelta string
}

func newMonthPage(view services.MonthView, rooms []string) monthPage {
	page := monthPage{
		Period: linkOf(view.Period),
		Prev:   linkOf(view.Period.Prev()),
		Next:   linkOf(view.Period.Next()),
		Rooms:  rooms,
		Sum:    newSummaryView(view.Summary, view.Summary.Max()),
	}
	cellRooms := rooms
	if len(cellRooms) == 0 {
		cellRooms = []string{""}
	}
	for _, dt := range view.Summary.DailyTotals {
		d := dayView{
			Day:        dt.Day,
			Total:      core.FormatAmount(dt.Total),
			Overnights: dt.OvernightCount,
			HasRevenue: dt.Total > 0,
		}
		for _, room := range cellRooms {
			d.Cells = append(d.Cells, cellView{Room: room, Raw: view.Raw.Get(dt.Day, room)})
		}
		page.Days = append(page.Days, d)
	}
	return page
}

func newComparePage(a, b core.Period, cmp core.Comparison) comparePage {
	max := cmp.Primary.Max()
	if m := cmp.Other.Max(); m > max {
		max = m
	}
	return comparePage{
		Primary:      linkOf(a),
		Other:        linkOf(b),
		PrimarySum:   newSummaryView(cmp.Primary, max),
		OtherSum:     newSummaryView(cmp.Other, max),
		TotalDelta:   core.FormatAmount(cmp.Primary.MonthlyTotal - cmp.Other.MonthlyTotal),
		AverageDelta: core.FormatAmount(cmp.Primary.AverageDailyRevenue - cmp.Other.AverageDailyRevenue),
	}
}

func newSummaryView(s core.MonthSummary, scaleMax int64) summaryView {
	v := summaryView{
		Label:           s.MonthName,
		Total:           core.FormatAmount(s.MonthlyTotal),
		Average:         core.FormatAmount(s.AverageDailyRevenue),
		Overnights:      core.FormatCount(s.TotalOvernightStays),
		DaysWithRevenue: s.DaysWithRevenue,
		Chart:           newChart(s, scaleMax),
	}
	for room, n := range s.RoomOvernights {
		v.Rooms = append(v.Rooms, roomTally{Room: room, Count: n})
	}
	sort.Slice(v.Rooms, func(i, j int) bool { return v.Rooms[i].Room < v.Rooms[j].Room })
	return v
}

// newChart lays out one bar per day scaled against scaleMax, so two charts
// built with the same max are directly comparable.
func newChart(s core.MonthSummary, scaleMax int64) chartView {
	c := chartView{
		Width:  len(s.DailyTotals) * (chartBarWidth + chartBarGap),
		Height: chartHeight,
	}
	for i, dt := range s.DailyTotals {
		h := 0
		if scaleMax > 0 && dt.Total > 0 {
			h = int(float64(dt.Total) / float64(scaleMax) * chartHeight)
			if h < 1 {
				h = 1
			}
		}
		c.Bars = append(c.Bars, barView{
			Day:    dt.Day,
			X:      i * (chartBarWidth + chartBarGap),
			Y:      chartHeight - h,
			Height: h,
			Title:  core.FormatAmount(dt.Total),
		})
	}
	return c
}
