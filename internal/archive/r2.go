// Package archive keeps a copy of every rendered invoice PDF in an S3
// compatible bucket (Cloudflare R2 in production).
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"billing-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// New builds an R2 client from configuration. It returns nil, nil when
// archiving is disabled.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("archive enabled but bucket or credentials are missing")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Client{s3: client, bucket: cfg.Bucket, prefix: cfg.KeyPrefix}, nil
}

// ObjectKey maps an invoice number such as NH/0052/25-26 to
// <prefix>25-26/NH-0052.pdf so a fiscal year lists together.
func ObjectKey(prefix, invoiceNumber string) string {
	parts := strings.Split(invoiceNumber, "/")
	name := strings.Join(parts, "-")
	if len(parts) == 3 {
		name = parts[2] + "/" + parts[0] + "-" + parts[1]
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + name + ".pdf"
}

// PutInvoice uploads one rendered invoice and returns its object key.
func (c *Client) PutInvoice(ctx context.Context, invoiceNumber string, pdf []byte) (string, error) {
	key := ObjectKey(c.prefix, invoiceNumber)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
