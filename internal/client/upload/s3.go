// Package upload stores profile pictures in S3-compatible object storage.
// A picture is PUT through a presigned URL, so the storage credentials never
// travel with the request body.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/netx"
	"github.com/google/uuid"
)

var ErrInvalidDataURL = errors.New("invalid data url")

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	uploadToPresignedURL = netx.UploadToPresignedURL
)

type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string

	// PublicBaseURL, when set, prefixes "<bucket>/<key>" in returned URLs.
	// Otherwise the presigned URL without its query string is returned.
	PublicBaseURL string
}

type S3Uploader struct {
	cfg     Config
	presign *s3.PresignClient
	http    *http.Client
	expires time.Duration
	now     func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Uploader{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
		http:    &http.Client{},
		expires: 15 * time.Minute,
		now:     time.Now,
	}, nil
}

// Upload stores the picture encoded in dataURL and returns its URL.
func (u *S3Uploader) Upload(ctx context.Context, dataURL string) (string, error) {
	mime, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := u.objectKey(mime)
	req, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mime),
	}, s3.WithPresignExpires(u.expires))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := uploadToPresignedURL(ctx, u.http, req.URL, mime, data); err != nil {
		return "", err
	}

	return u.publicURL(req.URL, key)
}

func (u *S3Uploader) objectKey(mime string) string {
	d := u.now().UTC()
	ext := strings.TrimPrefix(mime, "image/")
	return fmt.Sprintf("avatars/%d/%02d/%02d/%s.%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
}

func (u *S3Uploader) publicURL(presigned, key string) (string, error) {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + u.cfg.Bucket + "/" + key, nil
	}
	p, err := url.Parse(presigned)
	if err != nil {
		return "", err
	}
	p.RawQuery = ""
	return p.String(), nil
}

// ParseDataURL splits "data:<mime>;base64,<payload>" into its type and
// decoded bytes.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return "", nil, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mime, data, nil
}
