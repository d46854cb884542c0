package storage

import (
	"GoGallery/config"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO client.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// PutObject uploads an object.
func (s *MinioStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// RemoveObject deletes an object.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}

// CopyObject performs a server-side copy, used for renames.
func (s *MinioStore) CopyObject(ctx context.Context, dest CopyDest, src CopySource) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket: dest.Bucket,
			Object: dest.Object,
		},
		minio.CopySrcOptions{
			Bucket: src.Bucket,
			Object: src.Object,
		},
	)
	return err
}

// StatObject returns object metadata.
func (s *MinioStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{ObjectName: object, Size: stat.Size}, nil
}

// PublicURL builds the externally visible URL for an object.
func PublicURL(bucket, object string) string {
	scheme := "http"
	if config.AppConfig.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%s/%s/%s",
		scheme,
		config.AppConfig.MinioHost,
		config.AppConfig.MinioPort,
		bucket,
		url.PathEscape(object),
	)
}

// InitMinio initializes the MinIO client and main bucket.
func InitMinio() {
	client := newClient()
	ensureBucket(client, config.AppConfig.BucketName)
	Default = NewMinioStore(client)
}

// InitMinioTest initializes the test MinIO bucket.
func InitMinioTest() {
	client := newClient()
	ensureBucket(client, config.AppConfig.BucketNameTest)
	DefaultTest = NewMinioStore(client)
}

func newClient() *minio.Client {
	client, err := minio.New(fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: config.AppConfig.MinioUseSSL,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	return client
}

func ensureBucket(client *minio.Client, bucket string) {
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
}
