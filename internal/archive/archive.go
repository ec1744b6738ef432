// Package archive uploads session event logs to S3-compatible storage and
// prunes old uploads past the configured retention.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oszuidwest/zwfm-player/internal/config"
)

// uploadTimeout bounds a single event log upload.
const uploadTimeout = 30000 * time.Millisecond

// S3Config holds the settings needed to reach the archive bucket.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	RetentionDays   int
}

// IsConfigured reports whether the minimum S3 settings are present.
func (c *S3Config) IsConfigured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// BuildS3Config creates an S3Config from the config snapshot.
//
//nolint:gocritic // hugeParam: copy is acceptable for infrequent archive runs
func BuildS3Config(cfg config.Snapshot) *S3Config {
	return &S3Config{
		Endpoint:        cfg.ArchiveEndpoint,
		Region:          cfg.ArchiveRegion,
		Bucket:          cfg.ArchiveBucket,
		AccessKeyID:     cfg.ArchiveAccessKey,
		SecretAccessKey: cfg.ArchiveSecretKey,
		Prefix:          cfg.ArchivePrefix,
		RetentionDays:   cfg.ArchiveRetentionDays,
	}
}

// createS3Client creates an S3 client with the given configuration.
func createS3Client(cfg *S3Config) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = region
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

// TestS3Connection tests connectivity to the archive bucket by uploading and
// deleting a test object.
func TestS3Connection(cfg *S3Config) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("S3 archive is not configured")
	}

	client := createS3Client(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	testKey := cfg.objectKey(fmt.Sprintf("test-connection-%d.txt", time.Now().UnixNano()))
	testContent := []byte("ZuidWest FM player connection test")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(testKey),
		Body:          bytes.NewReader(testContent),
		ContentLength: aws.Int64(int64(len(testContent))),
	})
	if err != nil {
		return fmt.Errorf("upload test file: %w", err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(testKey),
	})
	if err != nil {
		slog.Warn("failed to delete test file", "key", testKey, "error", err)
	}

	return nil
}

// objectKey joins the configured prefix and filename into an object key.
func (c *S3Config) objectKey(filename string) string {
	if c.Prefix == "" {
		return filename
	}
	return path.Join(c.Prefix, filename)
}

// Archiver periodically uploads the session event log and prunes old uploads.
type Archiver struct {
	config  *config.Config
	logPath func() string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewArchiver creates an archiver for the event log at the path returned by
// logPath.
func NewArchiver(cfg *config.Config, logPath func() string) *Archiver {
	return &Archiver{config: cfg, logPath: logPath}
}

// Start launches the daily archive scheduler. Runs happen at 03:00 local
// time, after which retention cleanup follows.
func (a *Archiver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})

	go a.schedule(a.stopCh)
}

// Stop halts the scheduler. Any in-flight run completes.
func (a *Archiver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	close(a.stopCh)
}

// schedule sleeps until the next 03:00 and runs the archive cycle.
func (a *Archiver) schedule(stopCh chan struct{}) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		slog.Info("archive scheduler: next run scheduled", "at", next.Format(time.DateTime))

		select {
		case <-time.After(next.Sub(now)):
			a.runOnce()
		case <-stopCh:
			slog.Info("archive scheduler stopped")
			return
		}
	}
}

// runOnce uploads the event log and prunes expired uploads.
func (a *Archiver) runOnce() {
	cfg := BuildS3Config(a.config.Snapshot())
	if !a.config.Snapshot().ArchiveEnabled || !cfg.IsConfigured() {
		return
	}

	if err := a.ArchiveNow(); err != nil {
		slog.Error("archive upload failed", "error", err)
	}
	a.cleanup(cfg)
}

// ArchiveNow uploads the current event log immediately.
func (a *Archiver) ArchiveNow() error {
	snap := a.config.Snapshot()
	cfg := BuildS3Config(snap)
	if !cfg.IsConfigured() {
		return fmt.Errorf("S3 archive is not configured")
	}

	logPath := a.logPath()
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("archive: no event log to upload", "path", logPath)
			return nil
		}
		return fmt.Errorf("read event log: %w", err)
	}
	if len(data) == 0 {
		slog.Info("archive: event log empty, skipping upload", "path", logPath)
		return nil
	}

	key := cfg.objectKey(fmt.Sprintf("events-%s.log", time.Now().Format("2006-01-02-15-04")))

	client := createS3Client(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("upload event log: %w", err)
	}

	slog.Info("archive: event log uploaded", "key", key, "bytes", len(data))
	return nil
}
