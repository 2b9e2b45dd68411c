package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"custemoapi/stylist"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	downloadAttempts = 3
	downloadDelay    = time.Second
)

var ErrInvalidDataURL = errors.New("invalid data url")

var allowedImageMIMETypes = []string{"image/png", "image/jpeg", "image/webp", "image/heic", "image/heif"}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// ParseDataURL decodes a base64 `data:<mime>;base64,<payload>` image reference.
func ParseDataURL(raw string) (*stylist.Attachment, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("%w: expected base64 payload", ErrInvalidDataURL)
	}
	mime = strings.ToLower(mime)
	if !isAllowedImage(mime) {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidDataURL, mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return &stylist.Attachment{Data: data, MIMEType: mime}, nil
}

func isAllowedImage(mime string) bool {
	for _, allowed := range allowedImageMIMETypes {
		if mime == allowed {
			return true
		}
	}
	return false
}

// StatusError is a non-2xx answer to a plain download.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch file, status code: %d", e.Code)
}

// ReadFileFromUrl downloads url, retrying network failures and 5xx answers.
func ReadFileFromUrl(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			return readOnce(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(downloadAttempts),
		retry.Delay(downloadDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var status *StatusError
			if errors.As(err, &status) {
				return status.Code >= 500
			}
			return retry.IsRecoverable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Msgf("download attempt %d failed", n+1)
		}),
	)
}

func readOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create HTTP request: %v", err))
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return content, nil
}

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}
