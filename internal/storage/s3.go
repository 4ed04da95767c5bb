package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"barylstyle/contacts-api/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const avatarKeyPrefix = "avatars/"

// S3Store uploads avatars to a bucket. PublicURL is the base the bucket is
// reachable from (bucket website, CDN or the endpoint itself).
type S3Store struct {
	client    *aws.S3Client
	uploader  *manager.Uploader
	publicURL string
}

func NewS3Store(client *aws.S3Client, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		uploader:  manager.NewUploader(client.C),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key := avatarKeyPrefix + name

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       s.client.Bucket,
		Key:          awssdk.String(key),
		Body:         r,
		ContentType:  awssdk.String(contentType),
		CacheControl: awssdk.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar to s3, %w", err)
	}

	return s.publicURL + "/" + key, nil
}
