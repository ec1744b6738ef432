package archive

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// datePattern matches the date in an upload key: events-YYYY-MM-DD-HH-MM.log
var datePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// cleanupTimeout bounds one full retention pass over the bucket.
const cleanupTimeout = 5 * time.Minute

// cleanup removes archived event logs older than the configured retention.
func (a *Archiver) cleanup(cfg *S3Config) {
	// Retention 0 keeps uploads forever.
	if cfg.RetentionDays == 0 {
		return
	}

	client := createS3Client(cfg)
	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	prefix := cfg.objectKey("events-")

	ctx, cancel := context.WithTimeoutCause(
		context.Background(),
		cleanupTimeout,
		errors.New("archive cleanup timeout"),
	)
	defer cancel()

	var deleted int
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(cfg.Bucket),
			Prefix: aws.String(prefix),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		output, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			slog.Warn("archive cleanup: failed to list objects", "bucket", cfg.Bucket, "error", err)
			return
		}

		for _, obj := range output.Contents {
			key := aws.ToString(obj.Key)

			fileDate, ok := extractDateFromKey(filepath.Base(key))
			if !ok {
				continue
			}

			if fileDate.Before(cutoff) {
				_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
					Bucket: aws.String(cfg.Bucket),
					Key:    obj.Key,
				})
				if err != nil {
					slog.Warn("archive cleanup: failed to delete object", "key", key, "error", err)
				} else {
					deleted++
					slog.Debug("archive cleanup: deleted object", "key", key)
				}
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		continuationToken = output.NextContinuationToken
	}

	if deleted > 0 {
		slog.Info("archive cleanup: deleted objects", "count", deleted)
	}
}

// extractDateFromKey extracts the date from a key like "events-2025-01-15-14-00.log".
func extractDateFromKey(filename string) (time.Time, bool) {
	matches := datePattern.FindStringSubmatch(filename)
	if len(matches) < 2 {
		return time.Time{}, false
	}

	date, err := time.Parse(time.DateOnly, matches[1])
	if err != nil {
		return time.Time{}, false
	}

	return date, true
}
