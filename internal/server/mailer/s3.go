package mailer

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
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/azura/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the part of *s3.Client the outbox needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// OutboxMessage is the JSON document a delivery worker picks up.
type OutboxMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	To        string    `json:"to"`
	ResetURL  string    `json:"resetUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// S3OutboxMailer writes every message as an object under outbox/.
type S3OutboxMailer struct {
	client   ObjectPutter
	bucket   string
	resetURL string
	log      logging.Logger
	now      func() time.Time
}

func NewS3OutboxMailer(client ObjectPutter, bucket, resetURL string, log logging.Logger) *S3OutboxMailer {
	return &S3OutboxMailer{
		client:   client,
		bucket:   bucket,
		resetURL: resetURL,
		log:      log.With("module", "mailer"),
		now:      time.Now,
	}
}

// NewS3Client builds an S3 client for an S3-compatible backend such as MinIO.
func NewS3Client(ctx context.Context, c *sc.Config) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,     // MINIO_ROOT_USER
			c.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func outboxKey(d time.Time, id string) string {
	return fmt.Sprintf("outbox/password-reset/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), id)
}

func (m *S3OutboxMailer) SendPasswordReset(ctx context.Context, user *models.User, resetHash string) error {
	now := m.now().UTC()
	msg := OutboxMessage{
		ID:        uuid.NewString(),
		Type:      "password_reset",
		UserID:    user.ID,
		To:        user.Email,
		ResetURL:  m.resetURL + resetHash,
		CreatedAt: now,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := outboxKey(now, msg.ID)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put outbox object: %w", err)
	}

	m.log.Info(ctx, "password reset message queued", "user_id", user.ID, "key", key)
	return nil
}
