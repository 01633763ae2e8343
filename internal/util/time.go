package util

import "time"

const DateLayout = "2006-01-02"

var sofiaLocation *time.Location

func init() {
	var err error
	sofiaLocation, err = time.LoadLocation("Europe/Sofia")
	if err != nil {
		sofiaLocation = time.FixedZone("EET", 2*60*60)
	}
}

func NowSofia() time.Time {
	return time.Now().In(sofiaLocation)
}

// Today returns the current date in Sofia as YYYY-MM-DD.
func Today() string {
	return NowSofia().Format(DateLayout)
}

// DateOffset returns the Sofia date shifted by the given number of days.
func DateOffset(days int) string {
	return NowSofia().AddDate(0, 0, days).Format(DateLayout)
}

// LastNDates returns the last n dates including today, oldest first.
func LastNDates(n int) []string {
	dates := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, DateOffset(-i))
	}
	return dates
}

// ParseBroadcastTime combines a YYYY-MM-DD date and HH:MM time into a
// comparable instant. Unparseable input sorts first.
func ParseBroadcastTime(date, clock string) time.Time {
	t, err := time.ParseInLocation(DateLayout+" 15:04", date+" "+clock, sofiaLocation)
	if err != nil {
		t, err = time.ParseInLocation(DateLayout, date, sofiaLocation)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
