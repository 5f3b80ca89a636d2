package media

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

type S3Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicBase string
}

// S3Host stores media in an S3-compatible bucket. A non-empty Endpoint points
// it at MinIO or another compatible store with path-style addressing.
type S3Host struct {
	client     *s3.Client
	bucket     string
	publicBase string
	log        *logger.Logger
}

func NewS3Host(ctx context.Context, cfg S3Config, log *logger.Logger) (*S3Host, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Host{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: cfg.PublicBase,
		log:        log,
	}, nil
}

func (h *S3Host) Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (Object, error) {
	if size <= 0 {
		return Object{}, ErrEmptyFile
	}

	key := path.Join(kind, uuid.NewString())

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "media_upload",
			"kind":   kind,
		}).Errorf("s3 put failed: %v", err)
		return Object{}, commonerrors.ErrMediaHostError.WithCause(err)
	}

	return Object{
		URL: fmt.Sprintf("%s/%s", h.publicBase, key),
		Key: key,
	}, nil
}

func (h *S3Host) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return commonerrors.ErrMediaHostError.WithCause(err)
	}
	return nil
}
