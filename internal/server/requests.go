package server

// Request types for WebSocket commands with validation tags.
// These types define the expected input for each command and use
// go-playground/validator struct tags for automatic validation.

// --- Player session ---

// PlayerLoadRequest is the request body for player/load.
type PlayerLoadRequest struct {
	Paths []string `json:"paths" validate:"max=16,dive,required,max=4096"`
}

// --- Playback settings ---

// PlaybackUpdateRequest is the request body for playback/update.
type PlaybackUpdateRequest struct {
	Device string `json:"device" validate:"omitempty,max=256"`
}

// --- Monitor settings ---

// MonitorUpdateRequest is the request body for monitor/update.
type MonitorUpdateRequest struct {
	TickMs *int64 `json:"tick_ms" validate:"omitempty,gte=100,lte=60000"`
}

// --- Quiet detection settings ---

// QuietUpdateRequest is the request body for quiet/update.
type QuietUpdateRequest struct {
	ThresholdDB *float64 `json:"threshold_db" validate:"omitempty,gte=-100,lte=0"`
	DurationMs  *int64   `json:"duration_ms" validate:"omitempty,gte=500,lte=300000"`
	RecoveryMs  *int64   `json:"recovery_ms" validate:"omitempty,gte=500,lte=60000"`
}

// --- Notification settings ---

// WebhookUpdateRequest is the request body for notifications/webhook/update.
type WebhookUpdateRequest struct {
	URL string `json:"url" validate:"omitempty,max=2048"`
}

// LogUpdateRequest is the request body for notifications/log/update.
type LogUpdateRequest struct {
	Path string `json:"path" validate:"omitempty,max=4096"`
}

// EmailUpdateRequest is the request body for notifications/email/update.
type EmailUpdateRequest struct {
	TenantID     string `json:"tenant_id" validate:"omitempty,max=100"`
	ClientID     string `json:"client_id" validate:"omitempty,max=100"`
	ClientSecret string `json:"client_secret" validate:"omitempty,max=500"`
	FromAddress  string `json:"from_address" validate:"omitempty,max=254"`
	Recipients   string `json:"recipients" validate:"omitempty,max=1000"`
}

// ZabbixUpdateRequest is the request body for notifications/zabbix/update.
type ZabbixUpdateRequest struct {
	Server string `json:"server" validate:"omitempty,max=253"`
	Port   int    `json:"port" validate:"omitempty,gte=1,lte=65535"`
	Host   string `json:"host" validate:"omitempty,max=253"`
	Key    string `json:"key" validate:"omitempty,max=256"`
}

// --- Archive settings ---

// ArchiveUpdateRequest is the request body for archive/update.
type ArchiveUpdateRequest struct {
	Enabled       bool   `json:"enabled"`
	Endpoint      string `json:"endpoint" validate:"omitempty,max=2048"`
	Region        string `json:"region" validate:"omitempty,max=64"`
	Bucket        string `json:"bucket" validate:"omitempty,max=63"`
	AccessKey     string `json:"access_key" validate:"omitempty,max=128"`
	SecretKey     string `json:"secret_key" validate:"omitempty,max=256"`
	Prefix        string `json:"prefix" validate:"omitempty,max=512"`
	RetentionDays int    `json:"retention_days" validate:"omitempty,gte=1,lte=3650"`
}

// S3TestRequest is the request body for archive/test-s3.
type S3TestRequest struct {
	Endpoint  string `json:"endpoint" validate:"omitempty,max=2048"`
	Region    string `json:"region" validate:"omitempty,max=64"`
	Bucket    string `json:"bucket" validate:"required,max=63"`
	AccessKey string `json:"access_key" validate:"required,max=128"`
	SecretKey string `json:"secret_key" validate:"required,max=256"`
	Prefix    string `json:"prefix" validate:"omitempty,max=512"`
}
