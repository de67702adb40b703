package utils

import (
	"time"
)

var kst = loadKST()

func loadKST() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// KST returns the Asia/Seoul location used for market dates.
func KST() *time.Location {
	return kst
}

// TimeNowKST returns the current time in Korea Standard Time.
func TimeNowKST() time.Time {
	return time.Now().In(kst)
}

// BrokerDate formats t as YYYYMMDD in KST, the date format used by the brokerage API.
func BrokerDate(t time.Time) string {
	return t.In(kst).Format("20060102")
}

// PrettyDate formats t for human-readable messages.
func PrettyDate(t time.Time) string {
	return t.In(kst).Format("02 Jan 2006 15:04:05 MST")
}

// BackupSuffix formats t as the suffix appended to backup files.
func BackupSuffix(t time.Time) string {
	return t.In(kst).Format("20060102_150405")
}
