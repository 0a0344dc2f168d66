// Package archive keeps the raw model output of achievement syntheses in
// S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/careermemory/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Transcript is the stored document.
type Transcript struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	ModelOutput   string    `json:"model_output"`
	ArchivedAt    time.Time `json:"archived_at"`
}

// Key returns the object key of an achievement's transcript. The date is
// the calendar day of at.
func Key(userID, achievementID string, at time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%s.json", userID, at.Year(), int(at.Month()), at.Day(), achievementID)
}

type S3Archive struct {
	client *s3.Client
	bucket string
}

// NewS3Archive builds a client for the bucket in cfg using static
// credentials and the configured endpoint.
func NewS3Archive(ctx context.Context, cfg *sc.Config) (*S3Archive, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: cfg.S3Bucket}, nil
}

func (a *S3Archive) Archive(ctx context.Context, userID, achievementID string, at time.Time, raw string) error {
	body, err := json.Marshal(Transcript{
		UserID:        userID,
		AchievementID: achievementID,
		ModelOutput:   raw,
		ArchivedAt:    at,
	})
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	key := Key(userID, achievementID, at)
	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
