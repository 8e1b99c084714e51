// Package storage uploads product images to S3-compatible object storage
// and hands back public URLs. The catalog persists only the URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	appconfig "shop-service/config"
	"shop-service/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageFile is one image accompanying a product write.
type ImageFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Uploader struct {
	uploader  *manager.Uploader
	bucket    string
	region    string
	publicURL string
	logger    *zap.Logger
}

// NewUploader creates an object-storage uploader. A non-empty Endpoint
// switches to path-style addressing for S3-compatible stores.
func NewUploader(ctx context.Context, cfg appconfig.StorageConfig) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: cfg.PublicURL,
		logger:    util.GetLogger(),
	}, nil
}

// UploadAll uploads every image concurrently and waits for all of them.
// Any single failure fails the whole batch so the catalog never persists
// a product with a partial image set. Transient errors are retried by the
// SDK's standard retryer before surfacing here.
func (u *Uploader) UploadAll(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("storage: no images to upload")
	}

	urls := make([]string, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file ImageFile) {
			defer wg.Done()
			urls[i], errs[i] = u.upload(ctx, file)
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			util.ImageUploadsFailedTotal.Inc()
			return nil, err
		}
	}

	return urls, nil
}

func (u *Uploader) upload(ctx context.Context, file ImageFile) (string, error) {
	start := time.Now()
	defer func() {
		util.ImageUploadLatency.Observe(time.Since(start).Seconds())
	}()

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), filepath.Ext(file.Name))

	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file.Body,
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		u.logger.Error("Image upload failed",
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", file.Name, err)
	}

	util.ImageUploadsTotal.Inc()
	return u.objectURL(key), nil
}

func (u *Uploader) objectURL(key string) string {
	if u.publicURL != "" {
		return fmt.Sprintf("%s/%s", u.publicURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
