package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hotelbooking/internal/app/policies"
)

const receiptPrefix = "receipts/"

type Config struct {
	Endpoint  string
	UseSSL    bool
	AccessKey string
	SecretKey string
	Bucket    string
}

// ReceiptArchive writes booking receipts to an S3-compatible bucket as
// receipts/<booking-id>.json. A later receipt for the same booking replaces
// the earlier one.
type ReceiptArchive struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewReceiptArchive(cfg Config, logger *slog.Logger) (*ReceiptArchive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &ReceiptArchive{bucket: bucket, client: client, logger: logger}, nil
}

func (a *ReceiptArchive) Store(ctx context.Context, receipt policies.Receipt) (string, error) {
	key, err := ReceiptKey(receipt.BookingID)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("s3: encode receipt: %w", err)
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"booking-status": receipt.Status,
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	if a.logger != nil {
		a.logger.Debug("receipt archived", "booking_id", receipt.BookingID, "location", location)
	}
	return location, nil
}

// ReceiptKey rejects ids that would escape the receipts prefix.
func ReceiptKey(bookingID string) (string, error) {
	id := strings.TrimSpace(bookingID)
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("s3: invalid booking id %q", bookingID)
	}
	return receiptPrefix + id + ".json", nil
}

func (a *ReceiptArchive) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return a.bucketInitErr
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.ReceiptArchive = (*ReceiptArchive)(nil)
