// Package storage archives rendered order receipts to S3.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type ReceiptArchive struct {
	up     uploader
	bucket string
}

func NewReceiptArchive(up *manager.Uploader, bucket string) *ReceiptArchive {
	return &ReceiptArchive{up: up, bucket: bucket}
}

func ReceiptKey(orderID string) string {
	return fmt.Sprintf("receipts/%s.html", orderID)
}

// Store uploads an HTML receipt and returns its location.
func (a *ReceiptArchive) Store(ctx context.Context, orderID, html string) (string, error) {
	out, err := a.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ReceiptKey(orderID)),
		Body:        bytes.NewReader([]byte(html)),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt %s: %w", orderID, err)
	}
	return out.Location, nil
}
