package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

const (
	pageLoadTimeout = 30 * time.Second
	// maxMediaBytes is the Bot API upload limit for bots.
	maxMediaBytes = 50 << 20
)

// Open Graph tags checked in order; video wins over image.
var mediaMetaSelectors = []string{
	`meta[property="og:video:secure_url"]`,
	`meta[property="og:video"]`,
	`meta[property="og:image"]`,
}

// PageMeta renders the page in headless Chromium and downloads the media
// advertised by its Open Graph tags. It is a fallback for pages yt-dlp cannot
// handle, e.g. single-image posts.
type PageMeta struct {
	client   *http.Client
	maxBytes int64
	log      logrus.FieldLogger
}

// NewPageMeta creates a new browser-backed extractor.
func NewPageMeta(logger logrus.FieldLogger) *PageMeta {
	return &PageMeta{
		client:   &http.Client{Timeout: 2 * time.Minute},
		maxBytes: maxMediaBytes,
		log:      logger.WithField("component", "extractor").WithField("extractor", "page_meta"),
	}
}

// Extract resolves the media URL with rod and downloads it into dir.
func (p *PageMeta) Extract(ctx context.Context, pageURL, dir string) (string, error) {
	mediaURL, err := p.resolveMediaURL(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return p.download(ctx, mediaURL, dir)
}

func (p *PageMeta) resolveMediaURL(ctx context.Context, pageURL string) (mediaURL string, err error) {
	log := p.log.WithField("url", pageURL)

	// --- Browser Setup ---
	bin, exists := launcher.LookPath()
	if !exists {
		return "", errors.New("rod browser dependency not found")
	}
	l := launcher.New().Bin(bin).Headless(true)
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
		}
	}()

	// --- Page Navigation ---
	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Error closing rod page")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, pageLoadTimeout)
	defer cancel()
	page = page.Context(pageCtx)

	if err := page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("page load timed out for %s: %w", pageURL, pageCtx.Err())
		}
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	// --- Open Graph lookup ---
	for _, selector := range mediaMetaSelectors {
		found, el, err := page.Has(selector)
		if err != nil {
			log.WithError(err).WithField("selector", selector).Warn("Error searching for meta tag")
			continue
		}
		if !found {
			continue
		}
		content, err := el.Attribute("content")
		if err != nil || content == nil {
			continue
		}
		if v := strings.TrimSpace(*content); v != "" {
			log.WithField("media_url", v).Debug("Resolved media from meta tag")
			return v, nil
		}
	}
	return "", fmt.Errorf("no og:video or og:image on %s: %w", pageURL, ErrNoMedia)
}

func (p *PageMeta) download(ctx context.Context, mediaURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("bad media url: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media download failed: unexpected status %s", resp.Status)
	}

	dst := filepath.Join(dir, mediaFileName(mediaURL, resp.Header.Get("Content-Type")))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, p.maxBytes+1))
	if err == nil && n > p.maxBytes {
		err = fmt.Errorf("%w: over %d bytes", ErrMediaTooLarge, p.maxBytes)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}

	p.log.WithField("path", dst).Info("Page media download finished")
	return dst, nil
}

// mediaFileName names a download after the last URL path segment. When the
// segment has no extension, one is derived from contentType.
func mediaFileName(rawURL, contentType string) string {
	name := "media"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if path.Ext(name) != "" {
		return name
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return name + preferredExt(exts)
		}
	}
	return name + ".bin"
}

// preferredExt picks a stable extension from mime's unordered candidates.
func preferredExt(exts []string) string {
	for _, want := range []string{".mp4", ".jpg", ".png", ".webp", ".webm"} {
		for _, ext := range exts {
			if ext == want {
				return ext
			}
		}
	}
	return exts[0]
}
