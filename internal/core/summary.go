package core

// DailyTotal is the revenue of one calendar day summed over all its cells.
type DailyTotal struct {
	Day            int   `json:"day"`
	Total          int64 `json:"total"`
	OvernightCount int   `json:"overnight_count"`
}

// MonthSummary is the complete derived aggregate for one month.
type MonthSummary struct {
	MonthName           string         `json:"month_name"`
	MonthlyTotal        int64          `json:"monthly_total"`
	AverageDailyRevenue int64          `json:"average_daily_revenue"`
	TotalOvernightStays int            `json:"total_overnight_stays"`
	DaysWithRevenue     int            `json:"days_with_revenue"`
	DailyTotals         []DailyTotal   `json:"daily_totals"`
	RoomOvernights      map[string]int `json:"room_overnights"`
}

// Comparison pairs two independently computed summaries.
type Comparison struct {
	Primary MonthSummary `json:"primary"`
	Other   MonthSummary `json:"other"`
}

// Summarize aggregates src with the default policy.
func Summarize(src CellSource, daysInMonth int, monthLabel string) MonthSummary {
	return defaultParser.Summarize(src, daysInMonth, monthLabel)
}

// Summarize folds every cell of days 1..daysInMonth into a MonthSummary.
// Missing days count as empty. daysInMonth is trusted as given.
func (p *Parser) Summarize(src CellSource, daysInMonth int, monthLabel string) MonthSummary {
	if daysInMonth < 0 {
		daysInMonth = 0
	}
	s := MonthSummary{
		MonthName:      monthLabel,
		DailyTotals:    make([]DailyTotal, daysInMonth),
		RoomOvernights: make(map[string]int),
	}
	for day := 1; day <= daysInMonth; day++ {
		dt := DailyTotal{Day: day}
		if src != nil {
			for _, c := range src.Cells(day) {
				res := p.Parse(c.Raw)
				dt.Total += res.Total
				dt.OvernightCount += res.OvernightCount
				if c.Room != "" && res.OvernightCount > 0 {
					s.RoomOvernights[c.Room] += res.OvernightCount
				}
			}
		}
		s.DailyTotals[day-1] = dt
		s.MonthlyTotal += dt.Total
		s.TotalOvernightStays += dt.OvernightCount
		if dt.Total > 0 {
			s.DaysWithRevenue++
		}
	}
	if s.DaysWithRevenue > 0 {
		s.AverageDailyRevenue = s.MonthlyTotal / int64(s.DaysWithRevenue)
	}
	return s
}

// Max returns the highest day total, used to scale charts.
func (s MonthSummary) Max() int64 {
	var m int64
	for _, d := range s.DailyTotals {
		if d.Total > m {
			m = d.Total
		}
	}
	return m
}

// Clone returns a copy that shares no slices or maps with s.
func (s MonthSummary) Clone() MonthSummary {
	out := s
	out.DailyTotals = append([]DailyTotal(nil), s.DailyTotals...)
	out.RoomOvernights = make(map[string]int, len(s.RoomOvernights))
	for room, n := range s.RoomOvernights {
		out.RoomOvernights[room] = n
	}
	return out
}
