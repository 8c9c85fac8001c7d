package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket, publicBaseURL string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// BuildKey composes the storage key for a fresh blob:
// <prefix>/<random-suffix>-<filename>. The key is stored verbatim on the
// owning record and never re-derived.
func (s *StorageClient) BuildKey(prefix, filename string) string {
	return fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), filename)
}

func (s *StorageClient) Upload(key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func (s *StorageClient) Delete(key string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{key})
	return err
}

func (s *StorageClient) Download(key string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

// PublicURL maps a stored key to the URL callers see. Without a
// configured public base the raw key is passed through unchanged, so
// output is environment-dependent by design of the deployment.
func (s *StorageClient) PublicURL(key string) string {
	if s.publicBaseURL == "" {
		return key
	}
	return s.publicBaseURL + "/" + key
}
