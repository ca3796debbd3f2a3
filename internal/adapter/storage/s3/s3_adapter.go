package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

// S3Storage stores product images in a MinIO bucket and hands back public
// URLs. Keys are namespaced per identity:
// <identity-id>/<unix-millis>-<uuid>.<ext>. The uuid keeps keys unique when
// a batch uploads several files within the same millisecond, so an upload
// never overwrites an earlier one.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewS3Storage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, log logger.Logger) (*S3Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	err = client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), bucketName)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, errBucketExists)
		}
	}

	return &S3Storage{
		client: client,
		bucket: bucketName,
		logger: log,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, identityID, originalFileName string, data []byte) (string, error) {
	objectKey := objectKey(identityID, originalFileName)

	s.logger.Infof("S3Storage.Upload: uploading %s (%d bytes) as %s", originalFileName, len(data), objectKey)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(data),
		CacheControl: "max-age=3600",
	})
	if err != nil {
		s.logger.Errorf("S3Storage.Upload: PutObject failed for %s: %v", objectKey, err)
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey), nil
}

func objectKey(identityID, originalFileName string) string {
	ext := filepath.Ext(originalFileName)
	return fmt.Sprintf("%s/%d-%s%s", identityID, time.Now().UnixMilli(), uuid.New().String(), ext)
}

// UploadMultiple uploads sequentially and skips failures rather than
// aborting the batch; the returned slice holds only the successful URLs.
func (s *S3Storage) UploadMultiple(ctx context.Context, identityID string, files []domain.UploadFile) []string {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Upload(ctx, identityID, f.Name, f.Data)
		if err != nil {
			s.logger.Warnf("S3Storage.UploadMultiple: skipping %s: %v", f.Name, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
