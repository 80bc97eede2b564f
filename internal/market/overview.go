// Package market builds a market-wide snapshot: index quotes for domestic,
// Hong Kong and international watch-lists, breadth statistics over the whole
// A-share list, and sector rankings.
package market

// Index is one index quote snapshot.
type Index struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Current   float64 `json:"current"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	PrevClose float64 `json:"prev_close"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	Amplitude float64 `json:"amplitude"`
}

// Sector is one entry of the sector performance rankings.
type Sector struct {
	Name      string  `json:"name"`
	ChangePct float64 `json:"change_pct"`
}

// Overview is the snapshot for one report cycle. It is built fresh per run;
// a phase that failed leaves its lists empty and counters zero.
type Overview struct {
	Date      string  `json:"date"`
	Indices   []Index `json:"indices"`
	HKIndices []Index `json:"hk_indices"`
	USIndices []Index `json:"us_indices"`

	UpCount        int `json:"up_count"`
	DownCount      int `json:"down_count"`
	FlatCount      int `json:"flat_count"`
	LimitUpCount   int `json:"limit_up_count"`
	LimitDownCount int `json:"limit_down_count"`

	// TotalAmount is combined turnover in units of 1e8 CNY.
	TotalAmount float64 `json:"total_amount"`

	TopSectors    []Sector `json:"top_sectors"`
	BottomSectors []Sector `json:"bottom_sectors"`
}

// Amplitude is the intraday high-low range as a percentage of the previous
// close, 0 when no previous close is known.
func Amplitude(high, low, prevClose float64) float64 {
	if prevClose <= 0 {
		return 0
	}
	return (high - low) / prevClose * 100
}
