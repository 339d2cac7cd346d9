package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	newObjectPrefix = func(now time.Time) string {
		return fmt.Sprintf("cv/%d/%02d/%02d/%s", now.Year(), now.Month(), now.Day(), uuid.New())
	}
)

// S3Config addresses an S3-compatible bucket. Empty credentials fall back to
// the default AWS credential chain.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	LinkTTL      time.Duration
}

// S3Sink uploads artifacts and returns a presigned GET link to each.
type S3Sink struct {
	cfg S3Config
	now func() time.Time
}

func NewS3Sink(cfg S3Config) *S3Sink {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 24 * time.Hour
	}
	return &S3Sink{cfg: cfg, now: time.Now}
}

func (s *S3Sink) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.cfg.Region)}
	if s.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Sink) Put(ctx context.Context, name string, data []byte) (Location, error) {
	c, err := s.client(ctx)
	if err != nil {
		return Location{}, err
	}

	key := path.Join(newObjectPrefix(s.now().UTC()), path.Base(name))
	err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return Location{}, fmt.Errorf("upload %s: %w", key, err)
	}

	req, err := presignGetObject(newS3PresignClient(c), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.LinkTTL))
	if err != nil {
		return Location{}, fmt.Errorf("presign %s: %w", key, err)
	}

	return Location{Path: "s3://" + s.cfg.Bucket + "/" + key, URL: req.URL}, nil
}
