package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"discover-server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of *s3.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3MediaStore struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewS3Client loads the default AWS config for region. A non-empty endpoint points
// the client at an S3-compatible service using path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3MediaStore uploads into bucket. Public URLs are built from publicBaseURL,
// or from the virtual-hosted S3 URL of the bucket when it is empty.
func NewS3MediaStore(client ObjectPutter, bucket, region, publicBaseURL string) *S3MediaStore {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3MediaStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
}

func (s *S3MediaStore) Upload(ctx context.Context, image models.ReviewImage) (string, error) {
	body, err := io.ReadAll(image.Body)
	if err != nil {
		return "", fmt.Errorf("error reading image: %w", err)
	}

	s.mu.Lock()
	name := ObjectName(image.Filename, s.now(), s.rnd)
	s.mu.Unlock()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(ContentType(image, name)),
	})
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	log.Printf("[S3MediaStore] Uploaded %s to bucket %s", name, s.bucket)
	return s.publicBaseURL + "/" + name, nil
}
