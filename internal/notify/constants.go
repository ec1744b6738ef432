// Package notify delivers all-quiet alerts via webhook, log file, email and Zabbix.
package notify

import "time"

// AppName is the application name used in notifications.
const AppName = "ZuidWest FM Player"

// timestampUTC returns the current UTC time in RFC3339 format.
func timestampUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
