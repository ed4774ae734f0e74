package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

// BlobSource reads dataset files from an Azure Blob Storage container
type BlobSource struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewBlobSource creates an Azure Blob Storage dataset source. The container
// is expected to exist; the engine never creates or writes blobs.
func NewBlobSource(connectionString, containerName string, logger *zap.Logger) (*BlobSource, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	logger.Info("Azure Blob dataset source initialized",
		zap.String("container", containerName),
	)

	return &BlobSource{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// Open streams a dataset blob by name
func (s *BlobSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.containerName, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset blob %s: %w", name, err)
	}

	return resp.Body, nil
}
