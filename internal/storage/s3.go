// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

/*
Package storage provides object storage for user-uploaded media.

The only media the platform hosts today are profile avatars. They are written
to an S3-compatible bucket and served by public URL; the database stores the
URL, never the bytes.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// # Contracts

// AvatarStore defines the contract for hosting avatar images.
type AvatarStore interface {

	/*
		Upload writes the image bytes under the given key and returns the
		public URL where the object is served.

		Parameters:
		  - context: context.Context
		  - key: string (object key, unique per user)
		  - contentType: string (MIME type of the image)
		  - body: io.Reader (image bytes)

		Returns:
		  - string: Public object URL
		  - error: Upload failures
	*/
	Upload(context context.Context, key, contentType string, body io.Reader) (string, error)
}

// # S3 Implementation

// S3Options holds the settings for an S3-compatible bucket connection.
type S3Options struct {
	Bucket          string
	Region          string
	BaseEndpoint    string // Optional. Set for MinIO/R2-style providers; empty means AWS.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store implements [AvatarStore] on top of an S3-compatible bucket.
type S3Store struct {
	client  *s3.Client
	options S3Options
}

/*
NewS3Store builds the S3 client from static credentials.

Description: Non-AWS providers are addressed through BaseEndpoint with
path-style bucket access, the layout MinIO and R2 expect.

Parameters:
  - context: context.Context
  - options: S3Options

Returns:
  - *S3Store: Ready-to-upload store
  - error: AWS configuration failures
*/
func NewS3Store(context context.Context, options S3Options) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context,
		awsconfig.WithRegion(options.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			options.AccessKeyID,
			options.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(options.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, options: options}, nil
}

// Upload implements [AvatarStore].
func (store *S3Store) Upload(context context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.options.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload %q: %w", key, err)
	}

	return store.objectURL(key), nil
}

// objectURL derives the public URL for an uploaded object.
func (store *S3Store) objectURL(key string) string {
	if store.options.BaseEndpoint != "" {
		endpoint := strings.TrimSuffix(store.options.BaseEndpoint, "/")
		return fmt.Sprintf("%s/%s/%s", endpoint, store.options.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", store.options.Bucket, store.options.Region, key)
}
