package s3

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"adpilot/internal/config/configs"
	"adpilot/internal/core/port"
)

// FileStore resolves uploaded-file ids to their binary content from an S3
// bucket. Creative assets are uploaded by the advertiser-facing service;
// this side only reads.
type FileStore struct {
	client *s3.Client
	bucket string
}

func NewFileStore(ctx context.Context, cfg configs.S3) (*FileStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, err
	}
	return &FileStore{client: s3.NewFromConfig(awsCfg), bucket: cfg.Bucket}, nil
}

// Resolve downloads the object stored under the file id. The object key is
// the file id itself; the returned name is its base name.
func (f *FileStore) Resolve(ctx context.Context, fileID string) (*port.File, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	return &port.File{Name: path.Base(fileID), Content: content}, nil
}
