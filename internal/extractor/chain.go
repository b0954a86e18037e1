package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Chain tries its extractors in order and returns the first success.
type Chain struct {
	extractors []Extractor
	log        logrus.FieldLogger
}

func NewChain(logger logrus.FieldLogger, extractors ...Extractor) *Chain {
	return &Chain{
		extractors: extractors,
		log:        logger.WithField("component", "extractor"),
	}
}

// Extract returns the first successful result, or all errors joined.
func (c *Chain) Extract(ctx context.Context, url, dir string) (string, error) {
	if len(c.extractors) == 0 {
		return "", ErrNoMedia
	}
	var errs []error
	for i, e := range c.extractors {
		path, err := e.Extract(ctx, url, dir)
		if err == nil {
			return path, nil
		}
		c.log.WithError(err).WithFields(logrus.Fields{
			"url":   url,
			"stage": i,
		}).Warn("Extractor failed")
		errs = append(errs, fmt.Errorf("%T: %w", e, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}
