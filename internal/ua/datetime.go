package ua

import "time"

// uaEpoch is 1601-01-01 UTC, the OPC UA DateTime epoch.
var uaEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// ToUATicks converts a time.Time to the wire DateTime representation: a
// 64-bit count of 100ns ticks since 1601-01-01 UTC.
func ToUATicks(t time.Time) int64 {
	return (t.Unix()-uaEpoch.Unix())*1e7 + int64(t.Nanosecond())/100
}

// FromUATicks converts a wire DateTime tick count back to a time.Time.
func FromUATicks(ticks int64) time.Time {
	return time.Unix(uaEpoch.Unix()+ticks/1e7, (ticks%1e7)*100).UTC()
}
