package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	appconfig "custemoapi/config"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	uploadAttempts = 3
	uploadDelay    = 2 * time.Second
)

type AWSServiceProvider interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error)
}

// AWSService talks to the R2 bucket through the S3 API.
type AWSService struct {
	S3Client        *s3.Client
	S3PresignClient *s3.PresignClient
	BucketName      string
}

func NewAWSService(ctx context.Context, cfg appconfig.R2Config) (*AWSService, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		}, nil
	})
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &AWSService{
		S3Client:        client,
		S3PresignClient: s3.NewPresignClient(client),
		BucketName:      cfg.BucketName,
	}, nil
}

// UploadObject puts data under key, retrying transient failures a few times.
func (awsService *AWSService) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return retry.Do(
		func() error {
			_, err := awsService.S3Client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(awsService.BucketName),
				Key:         aws.String(key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String(contentType),
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uploadAttempts),
		retry.Delay(uploadDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Msgf("[R2: %s] upload attempt %d failed", key, n+1)
		}),
	)
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(awsService.BucketName),
		Key:    aws.String(fileKey),
	}, s3.WithPresignExpires(presignedURLExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return presignedGetRequest.URL, nil
}
