// Package downloader resolves granule access URLs to local files or
// byte-range-capable handles. HTTPS URLs stream through the Earthdata
// bearer token; s3 URLs go through the AWS SDK, optionally with
// delegated in-region credentials.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ProgressFunc reports cumulative bytes downloaded and the expected
// total. It is invoked once with 0 bytes before the transfer starts so
// callers see the declared content length up front.
type ProgressFunc func(downloaded, total int64)

// Downloader transfers granule data. The zero value works for
// anonymous HTTP downloads.
type Downloader struct {
	httpClient *http.Client
	token      string
	s3Client   *s3.Client
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) { d.httpClient = client }
}

// WithToken attaches an Earthdata bearer token to HTTP transfers.
func WithToken(token string) Option {
	return func(d *Downloader) { d.token = token }
}

// WithS3Client sets the client used for s3 scheme URLs, typically
// built from delegated credentials via NewS3Client.
func WithS3Client(client *s3.Client) Option {
	return func(d *Downloader) { d.s3Client = client }
}

// New constructs a Downloader.
func New(opts ...Option) *Downloader {
	d := &Downloader{httpClient: http.DefaultClient}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Download retrieves the resource at rawURL and writes it to destPath.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string) error {
	return d.DownloadWithProgress(ctx, rawURL, destPath, nil)
}

// DownloadWithProgress downloads a resource while reporting progress.
// A failed transfer removes the partial file; there is no resume and
// no checksum verification.
func (d *Downloader) DownloadWithProgress(ctx context.Context, rawURL, destPath string, progress ProgressFunc) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse access URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return d.downloadHTTP(ctx, rawURL, destPath, progress)
	case "s3":
		return d.downloadS3(ctx, u, destPath, progress)
	default:
		return fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}
}

func (d *Downloader) downloadHTTP(ctx context.Context, rawURL, destPath string, progress ProgressFunc) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	httpClient := d.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download resource: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download resource: unexpected status code %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		out.Close()
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	total := resp.ContentLength
	if progress != nil {
		progress(0, total)
	}

	_, err = copyWithProgress(ctx, out, resp.Body, total, progress)
	if err != nil {
		return fmt.Errorf("failed to write resource to file: %w", err)
	}

	return nil
}

func (d *Downloader) downloadS3(ctx context.Context, u *url.URL, destPath string, progress ProgressFunc) (err error) {
	s3Client := d.s3Client
	if s3Client == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client = s3.NewFromConfig(cfg)
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	result, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		out.Close()
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	var total int64
	if result.ContentLength != nil {
		total = *result.ContentLength
	}

	if progress != nil {
		progress(0, total)
	}

	_, err = copyWithProgress(ctx, out, result.Body, total, progress)
	if err != nil {
		return fmt.Errorf("failed to write resource to file: %w", err)
	}

	return nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	const defaultBufferSize = 32 * 1024
	buf := make([]byte, defaultBufferSize)
	var written int64

	for {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, writeErr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			written += int64(w)
			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
}
