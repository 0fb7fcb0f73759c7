package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"ad-video-gen/internal"
)

type Client interface {
	PutBytes(ctx context.Context, key string, b []byte, contentType string) error
	PutFile(ctx context.Context, key, path string) error
	WriteJSON(ctx context.Context, key string, v any) error
}

type s3Client struct {
	bucket string
	api    *awss3.Client
	upl    *manager.Uploader
}

func New(cfg internal.Config) (Client, error) {
	endpoint := cfg.S3Endpoint
	forcePathStyle := true
	if strings.Contains(endpoint, "amazonaws.com") {
		forcePathStyle = false
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = forcePathStyle
		o.BaseEndpoint = &endpoint
	})

	return &s3Client{
		bucket: cfg.S3Bucket,
		api:    client,
		upl:    manager.NewUploader(client),
	}, nil
}

func (c *s3Client) PutBytes(ctx context.Context, key string, b []byte, contentType string) error {
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(b),
		ContentType: &contentType,
	})
	return err
}

// PutFile streams a local file through the multipart uploader. Videos are
// big enough that a single PutObject would buffer the whole file.
func (c *s3Client) PutFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = c.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
	})
	return err
}

func (c *s3Client) WriteJSON(ctx context.Context, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return c.PutBytes(ctx, key, b, "application/json")
}
