package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/rdb/internal/server/config"
	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

// ObjectPutter is the part of *s3.Client the archiver uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from the server config. Static
// credentials are used when a user is configured; otherwise the default AWS
// chain applies. A base endpoint switches to path-style addressing for
// S3-compatible stores such as MinIO.
func NewS3Client(ctx context.Context, c *sc.Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.S3Region)}
	if c.S3RootUser != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3RootUser, c.S3RootPassword, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Archiver stores a public snapshot of every accepted release in a bucket.
type Archiver struct {
	client ObjectPutter
	bucket string
	log    logging.Logger
}

func NewArchiver(client ObjectPutter, bucket string, log logging.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, log: log}
}

// ArchiveKey is the object key of the snapshot of id at version.
func ArchiveKey(id, version string) string {
	return fmt.Sprintf("mods/%s/%s.json", id, version)
}

// AfterWrite uploads the public view of entry. Failures are logged only.
func (a *Archiver) AfterWrite(ctx context.Context, entry *models.ModEntry, outcome models.Outcome) {
	body, err := json.Marshal(entry.Public())
	if err != nil {
		a.log.Warn(ctx, "archive encode failed", "mod_id", entry.ID, "error", err)
		return
	}

	key := ArchiveKey(entry.ID, entry.Info.Version)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.log.Warn(ctx, "archive upload failed", "mod_id", entry.ID, "key", key, "error", err)
		return
	}
	a.log.Debug(ctx, "release archived", "mod_id", entry.ID, "key", key, "outcome", outcome.String())
}
