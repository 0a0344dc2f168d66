package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/dmitrijs2005/careermemory/internal/server/config"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3RootUser:     "admin",
		S3RootPassword: "secret",
		S3Bucket:       "transcripts",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

func TestKey(t *testing.T) {
	at := time.Date(2026, time.March, 1, 23, 30, 0, 0, time.FixedZone("MST", -7*3600))
	assert.Equal(t, "users/u1/2026/03/01/a1.json", Key("u1", "a1", at))
}

func TestNewS3Archive_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	boom := errors.New("no config")
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}

	_, err := NewS3Archive(context.Background(), testConfig())
	assert.ErrorIs(t, err, boom)
}

func TestNewS3Archive_Endpoint(t *testing.T) {
	origNew := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = origNew })

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return origNew(cfg, optFns...)
	}

	a, err := NewS3Archive(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "transcripts", a.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestArchive_PutsTranscript(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		body, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}

	a, err := NewS3Archive(context.Background(), testConfig())
	require.NoError(t, err)

	at := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, a.Archive(context.Background(), "u1", "a1", at, `{"name":"x"}`))

	assert.Equal(t, "transcripts", aws.ToString(got.Bucket))
	assert.Equal(t, "users/u1/2026/03/01/a1.json", aws.ToString(got.Key))
	assert.Equal(t, "application/json", aws.ToString(got.ContentType))

	var tr Transcript
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, `{"name":"x"}`, tr.ModelOutput)
	assert.Equal(t, "a1", tr.AchievementID)
}

func TestArchive_PutError(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	boom := errors.New("access denied")
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, boom
	}

	a, err := NewS3Archive(context.Background(), testConfig())
	require.NoError(t, err)

	err = a.Archive(context.Background(), "u1", "a1", time.Now(), "raw")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "users/u1/")
}
