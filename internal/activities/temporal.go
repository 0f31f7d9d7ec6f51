package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/yourorg/image-variants/internal/types"
	"github.com/yourorg/image-variants/internal/variant"
)

// Registered activity names; must match workflow.ExecuteActivity calls.
const (
	GenerateVariantName = "Activities.GenerateVariant"
	CascadeDeleteName   = "Activities.CascadeDelete"
)

// GenerateVariant is the Temporal form of Generate. Failures that a retry
// cannot fix are marked non-retryable; the rest are left to the retry policy.
func (a *Activities) GenerateVariant(ctx context.Context, p types.GenerateParams) (types.GenerateResult, error) {
	d, err := a.Generate(ctx, variant.Request{
		SourceKey:  p.SourceKey,
		DerivedKey: p.DerivedKey,
		Spec:       variant.Spec{Width: p.Width, Height: p.Height},
	})
	if err != nil {
		return types.GenerateResult{}, asActivityError(err)
	}
	return types.GenerateResult{
		DerivedKey:  d.Key,
		ContentType: d.ContentType,
		Width:       d.Width,
		Height:      d.Height,
		Size:        d.Size,
	}, nil
}

// CascadeDelete is the Temporal form of Cascade. A retried cascade relists
// the namespace, so keys deleted by an earlier attempt are simply not found.
func (a *Activities) CascadeDelete(ctx context.Context, p types.CascadeParams) (types.CascadeResult, error) {
	src, err := variant.NewSource(p.SourceKey)
	if err != nil {
		return types.CascadeResult{}, asActivityError(err)
	}
	n, err := a.Cascade(ctx, src)
	if err != nil {
		return types.CascadeResult{Deleted: n}, asActivityError(err)
	}
	return types.CascadeResult{Deleted: n}, nil
}

func asActivityError(err error) error {
	switch {
	case errors.Is(err, variant.ErrSourceNotFound),
		errors.Is(err, variant.ErrTranscodeFailed),
		errors.Is(err, variant.ErrDisallowedResolution),
		errors.Is(err, variant.ErrMalformed):
		return temporal.NewNonRetryableApplicationError(err.Error(), errorType(err), err)
	}
	return err
}

func errorType(err error) string {
	switch {
	case errors.Is(err, variant.ErrSourceNotFound):
		return "SourceNotFound"
	case errors.Is(err, variant.ErrTranscodeFailed):
		return "TranscodeFailed"
	case errors.Is(err, variant.ErrDisallowedResolution):
		return "DisallowedResolution"
	default:
		return "Malformed"
	}
}
