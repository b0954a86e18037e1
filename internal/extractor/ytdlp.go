package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	outputTemplate  = "%(id)s.%(ext)s"
	maxStderrLength = 300
)

// YtDlp runs the yt-dlp executable.
type YtDlp struct {
	bin     string
	format  string
	cookies string
	log     logrus.FieldLogger
}

// NewYtDlp creates an extractor calling the yt-dlp binary at bin.
// An empty format defaults to "best".
func NewYtDlp(bin, format, cookieFile string, logger logrus.FieldLogger) *YtDlp {
	if format == "" {
		format = "best"
	}
	return &YtDlp{
		bin:     bin,
		format:  format,
		cookies: cookieFile,
		log:     logger.WithField("component", "extractor").WithField("extractor", "yt-dlp"),
	}
}

func (y *YtDlp) args(url, dir string) []string {
	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-f", y.format,
		"-o", filepath.Join(dir, outputTemplate),
		"--print", "after_move:filepath",
		"--no-simulate",
	}
	if y.cookies != "" {
		args = append(args, "--cookies", y.cookies)
	}
	return append(args, url)
}

// Extract downloads url into dir and returns the final file path printed by
// yt-dlp after post-processing.
func (y *YtDlp) Extract(ctx context.Context, url, dir string) (string, error) {
	log := y.log.WithField("url", url)
	log.Debug("Running yt-dlp")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.bin, y.args(url, dir)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, trimOutput(stderr.String(), maxStderrLength))
	}

	path := lastLine(stdout.String())
	if path == "" {
		return "", fmt.Errorf("yt-dlp printed no file path: %w", ErrNoMedia)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp output %s: %w", path, err)
	}

	log.WithField("path", path).Info("yt-dlp download finished")
	return path, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if ln := strings.TrimSpace(lines[i]); ln != "" {
			return ln
		}
	}
	return ""
}

func trimOutput(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary so multi-byte stderr stays valid UTF-8.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
