package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore keeps generated media in GridFS and serves it back through
// the API under /v1/media/{id}.
type BlobStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

// Blob is a stored file opened for reading
type Blob struct {
	io.ReadCloser
	ContentType string
	Length      int64
}

// NewBlobStore opens the "media" GridFS bucket
func NewBlobStore(db *mongo.Database, publicBaseURL string) (*BlobStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("media"))
	if err != nil {
		return nil, fmt.Errorf("failed to open media bucket: %w", err)
	}
	return &BlobStore{bucket: bucket, baseURL: publicBaseURL}, nil
}

// Upload stores data and returns its public URL
func (s *BlobStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.New().String()
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if err := s.bucket.UploadFromStreamWithID(id, id, bytes.NewReader(data), opts); err != nil {
		return "", err
	}
	return s.URL(id), nil
}

// URL returns the public address of a stored blob
func (s *BlobStore) URL(id string) string {
	return fmt.Sprintf("%s/v1/media/%s", s.baseURL, id)
}

// Open streams a stored blob
func (s *BlobStore) Open(ctx context.Context, id string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	file := stream.GetFile()
	blob := &Blob{ReadCloser: stream, Length: file.Length, ContentType: "application/octet-stream"}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
		blob.ContentType = meta.ContentType
	}
	return blob, nil
}
