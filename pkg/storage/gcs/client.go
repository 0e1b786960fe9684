package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/multierr"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/autoyard/autoyard-backend/pkg/config"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

var (
	errBucketRequired       = errors.New("gcs bucket name is required")
	errClientNotInitialized = errors.New("gcs client not initialized")
)

// Client is the listing image blob store: one bucket, public-read objects.
type Client struct {
	svc        *storage.Service
	bucket     string
	publicBase string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds the JSON API client. Extra options are appended after the
// credential options, which lets tests point it at a local endpoint.
func NewClient(ctx context.Context, cfg config.StorageConfig, gcp config.GCPConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	bucket := strings.TrimSpace(cfg.BucketName)
	if bucket == "" {
		return nil, errBucketRequired
	}

	opts := append(clientOptions(gcp), extra...)
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" {
		publicBase = "https://storage.googleapis.com"
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", bucket), "gcs client initialized")
	}

	return &Client{svc: svc, bucket: bucket, publicBase: publicBase}, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

// Bucket returns the configured listing bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// BucketExists reports whether the configured bucket is reachable. A missing
// bucket is (false, nil); transport and auth failures are returned as errors.
func (c *Client) BucketExists(ctx context.Context) (bool, error) {
	if c == nil || c.svc == nil {
		return false, errClientNotInitialized
	}
	if _, err := c.svc.Buckets.Get(c.bucket).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get bucket %q: %w", c.bucket, err)
	}
	return true, nil
}

// Upload writes one object and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if c == nil || c.svc == nil {
		return "", errClientNotInitialized
	}
	objectPath = strings.TrimLeft(objectPath, "/")
	obj := &storage.Object{Name: objectPath, ContentType: contentType}

	_, err := c.svc.Objects.
		Insert(c.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", objectPath, err)
	}
	return c.PublicURL(objectPath), nil
}

// Remove deletes the given objects. Objects that are already gone are not
// errors; every other failure is collected.
func (c *Client) Remove(ctx context.Context, objectPaths ...string) error {
	if c == nil || c.svc == nil {
		return errClientNotInitialized
	}
	var errs error
	for _, path := range objectPaths {
		path = strings.TrimLeft(path, "/")
		if path == "" {
			continue
		}
		if err := c.svc.Objects.Delete(c.bucket, path).Context(ctx).Do(); err != nil && !isNotFound(err) {
			errs = multierr.Append(errs, fmt.Errorf("delete %q: %w", path, err))
		}
	}
	return errs
}

// PublicURL is <base>/<bucket>/<path>.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucket, strings.TrimLeft(objectPath, "/"))
}

// ObjectPathFromURL extracts the object path from a public URL produced by
// PublicURL. URLs pointing elsewhere report false.
func (c *Client) ObjectPathFromURL(raw string) (string, bool) {
	prefix := c.publicBase + "/" + c.bucket + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	path, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || path == "" {
		return "", false
	}
	return path, true
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	ok, err := c.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("gcs bucket %q not found", c.bucket)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
