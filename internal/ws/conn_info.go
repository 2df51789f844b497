package ws

import "time"

type ConnInfo struct {
	ConnID      string
	DeviceID    string
	IP          string
	RequestID   string
	UserAgent   string
	TraceID     string
	ConnectedAt time.Time
}
