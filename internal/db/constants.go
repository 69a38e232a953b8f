package db

import "time"

// sqliteTimeLayout is the layout timestamps are written with, always in UTC.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// timeFormats are the layouts accepted when reading timestamps back. The driver
// may hand DATETIME columns back as time.Time, which database/sql renders as RFC 3339.
var timeFormats = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
}
