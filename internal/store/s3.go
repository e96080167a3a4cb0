package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"

	"github.com/vango-dev/engine/internal/config"
)

// objectAPI is the subset of *s3.Client used by S3Store. It is implemented
// by the real client and by test doubles.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores snapshots as objects in an S3 bucket.
type S3Store struct {
	client objectAPI
	bucket string
	prefix string
	cb     *gobreaker.CircuitBreaker
}

// NewS3Store creates a store for cfg.Bucket. Static credentials from cfg are
// used when set; otherwise AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN are read on each credential refresh.
func NewS3Store(cfg config.S3Config) *S3Store {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(credentials(cfg)),
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return newS3Store(s3.New(opts), cfg.Bucket, cfg.Prefix)
}

func newS3Store(client objectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		cb:     newBreaker("s3:" + bucket),
	}
}

func credentials(cfg config.S3Config) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		if cfg.AccessKeyID != "" {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "engine config",
			}, nil
		}
		return aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}

// Get downloads the snapshot object.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	return guard(s.cb, "get", key, func() ([]byte, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.prefix + key),
		})
		if err != nil {
			var missing *types.NoSuchKey
			if stderrors.As(err, &missing) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		defer out.Body.Close()
		return io.ReadAll(out.Body)
	})
}

// Put uploads the snapshot object.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := guard(s.cb, "put", key, func() ([]byte, error) {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s.bucket),
			Key:          aws.String(s.prefix + key),
			Body:         bytes.NewReader(data),
			ContentType:  aws.String("text/html; charset=utf-8"),
			CacheControl: aws.String("no-cache"),
		})
		return nil, err
	})
	return err
}
