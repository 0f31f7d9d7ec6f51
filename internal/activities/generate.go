package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	znmetrics "github.com/yourorg/image-variants/internal/metrics"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/variant"
)

// Generate fetches the source, resizes it into req.Spec and writes the
// variant at req.DerivedKey. The encoded image is complete before the single
// Put, so the derived key is either fully written or untouched.
func (a *Activities) Generate(ctx context.Context, req variant.Request) (variant.Derived, error) {
	label := req.Spec.Label()
	log := a.log.With(zap.String("source_key", req.SourceKey), zap.String("derived_key", req.DerivedKey), zap.String("label", label))
	start := time.Now()

	if !a.cfg.Allowed.IsAllowed(label) {
		return variant.Derived{}, fmt.Errorf("%w: %s for %s", variant.ErrDisallowedResolution, label, req.DerivedKey)
	}

	src, err := a.store.Get(ctx, req.SourceKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			znmetrics.GenerationFailures.WithLabelValues("source_not_found").Inc()
			log.Warn("source not found")
			return variant.Derived{}, fmt.Errorf("%w: %s (requested %s)", variant.ErrSourceNotFound, req.SourceKey, req.DerivedKey)
		}
		znmetrics.GenerationFailures.WithLabelValues("store_read").Inc()
		log.Error("source read failed", zap.Error(err))
		return variant.Derived{}, fmt.Errorf("%w: %s: %w", variant.ErrStoreReadFailed, req.SourceKey, err)
	}

	res, err := a.codec.Resize(src.Body, req.Spec.Width, req.Spec.Height)
	if err != nil {
		znmetrics.GenerationFailures.WithLabelValues("transcode").Inc()
		log.Error("transcode failed", zap.Error(err))
		return variant.Derived{}, fmt.Errorf("%w: %s to %s: %w", variant.ErrTranscodeFailed, req.SourceKey, label, err)
	}
	contentType := a.codec.DetectFormat(res.Body)

	if err := a.store.Put(ctx, req.DerivedKey, res.Body, contentType); err != nil {
		znmetrics.GenerationFailures.WithLabelValues("store_write").Inc()
		log.Error("variant write failed", zap.Error(err))
		return variant.Derived{}, fmt.Errorf("%w: %s: %w", variant.ErrStoreWriteFailed, req.DerivedKey, err)
	}

	znmetrics.Generated.WithLabelValues(label).Inc()
	znmetrics.GenerationSeconds.Observe(time.Since(start).Seconds())
	log.Info("variant written",
		zap.String("content_type", contentType),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("bytes", len(res.Body)),
	)
	return variant.Derived{
		Key:         req.DerivedKey,
		SourceKey:   req.SourceKey,
		Spec:        req.Spec,
		ContentType: contentType,
		Width:       res.Width,
		Height:      res.Height,
		Size:        len(res.Body),
	}, nil
}
