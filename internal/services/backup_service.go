package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"megacrm-backend/internal/realtime"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/store/xlsxstore"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectUploader is the part of the S3 client used for backups
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client for an S3-compatible endpoint (R2, MinIO, AWS)
func NewS3Client(ctx context.Context, endpoint, region, accessKey, secretKey string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// BackupResult describes one uploaded workbook
type BackupResult struct {
	Key   string    `json:"key"`
	Bytes int       `json:"bytes"`
	At    time.Time `json:"at"`
}

// BackupService exports every table into one workbook and uploads it.
// It also imports workbooks back into the store.
type BackupService struct {
	Store    store.TableStore
	Uploader ObjectUploader
	Bucket   string
	Prefix   string
	Changes  *Changes

	mu       sync.Mutex
	ticker   *time.Ticker
	stopChan chan bool
	last     *BackupResult
}

func NewBackupService(s store.TableStore, uploader ObjectUploader, bucket, prefix string, changes *Changes) *BackupService {
	return &BackupService{Store: s, Uploader: uploader, Bucket: bucket, Prefix: prefix, Changes: changes}
}

// Run performs a single backup
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	if s.Uploader == nil || s.Bucket == "" {
		return nil, fmt.Errorf("backup storage: %w", ErrUnavailable)
	}

	data, err := xlsxstore.Snapshot(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	now := time.Now()
	key := fmt.Sprintf("%smegacrm_%s.xlsx", s.Prefix, now.UTC().Format("20060102_150405"))
	_, err = s.Uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	res := &BackupResult{Key: key, Bytes: len(data), At: now}
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	log.Printf("[Backup] Success: %s (%d bytes)", key, len(data))
	return res, nil
}

// Last returns the most recent successful backup, nil before the first one
func (s *BackupService) Last() *BackupResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Start runs a backup immediately and then every interval until Stop
func (s *BackupService) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil || interval <= 0 {
		return
	}

	s.ticker = time.NewTicker(interval)
	s.stopChan = make(chan bool)
	ticker, stop := s.ticker, s.stopChan

	go func() {
		log.Println("[Backup] Starting automatic backup scheduler")
		s.runScheduled()

		for {
			select {
			case <-ticker.C:
				s.runScheduled()
			case <-stop:
				log.Println("[Backup] Scheduler stopped")
				return
			}
		}
	}()

	log.Printf("[Backup] Scheduler started (interval: %v)", interval)
}

func (s *BackupService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.Run(ctx); err != nil {
		log.Printf("[Backup] Failed: %v", err)
	}
}

// Stop stops the scheduler
func (s *BackupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stopChan)
		s.ticker = nil
	}
}

// Import loads every sheet of an uploaded workbook as a table. Tables that
// already exist are left untouched; the created names are returned.
func (s *BackupService) Import(ctx context.Context, r io.Reader) ([]string, error) {
	created, err := xlsxstore.Import(ctx, r, s.Store)
	if errors.Is(err, xlsxstore.ErrInvalidWorkbook) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		if len(created) > 0 {
			s.Changes.Notify(ctx, realtime.Event{Type: realtime.EmployeesChanged})
		}
		return created, fmt.Errorf("import stopped after %d tables: %w", len(created), err)
	}
	if len(created) > 0 {
		log.Printf("[Backup] Imported %d tables", len(created))
		s.Changes.Notify(ctx, realtime.Event{Type: realtime.EmployeesChanged})
	}
	return created, nil
}
