package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	znmetrics "github.com/yourorg/image-variants/internal/metrics"
	"github.com/yourorg/image-variants/internal/trigger"
	"github.com/yourorg/image-variants/internal/variant"
)

// Runner executes accepted work.
type Runner interface {
	Generate(ctx context.Context, req variant.Request) (variant.Derived, error)
	Cascade(ctx context.Context, src variant.Source) (int, error)
}

// Decision is a classified and gated trigger. Rejection is set when the
// trigger must be answered with a client error and no work done.
type Decision struct {
	Outcome   trigger.Outcome
	Rejection *Response
}

// Pipeline composes classification, the resolution gate, execution and the
// response envelope for one invocation.
type Pipeline struct {
	classifier trigger.Classifier
	allowed    variant.AllowedSet
	runner     Runner
	baseURL    string
	log        *zap.Logger
}

// New builds a Pipeline; a nil logger is replaced by a no-op one.
func New(classifier trigger.Classifier, allowed variant.AllowedSet, runner Runner, baseURL string, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{classifier: classifier, allowed: allowed, runner: runner, baseURL: baseURL, log: log}
}

// Decide classifies t and applies the resolution whitelist. It does no I/O.
func (p *Pipeline) Decide(t trigger.Trigger) Decision {
	out := p.classifier.Classify(t)
	if out.Kind == trigger.Accepted {
		if label := out.Request.Spec.Label(); !p.allowed.IsAllowed(label) {
			out = trigger.Outcome{
				Kind:    trigger.Rejected,
				Reason:  fmt.Errorf("%w: wanted resolution %s is not allowed (key %q)", variant.ErrDisallowedResolution, label, out.Key),
				Key:     out.Key,
				Storage: out.Storage,
			}
		}
	}
	znmetrics.Triggers.WithLabelValues(out.Kind.String()).Inc()

	d := Decision{Outcome: out}
	if out.Kind == trigger.Rejected {
		d.Rejection = Reject(out.Reason)
		p.log.Warn("trigger rejected", zap.String("key", out.Key), zap.Bool("storage", out.Storage), zap.Error(out.Reason))
	}
	return d
}

// Handle runs one invocation end to end. A nil response with a nil error
// means nothing is to be sent back (ignored notifications, completed
// cascades). Generation and cascade failures are returned, not swallowed,
// so the caller's own retry policy applies.
func (p *Pipeline) Handle(ctx context.Context, t trigger.Trigger) (*Response, error) {
	d := p.Decide(t)
	return p.Execute(ctx, d)
}

// Execute carries out a decision.
func (p *Pipeline) Execute(ctx context.Context, d Decision) (*Response, error) {
	out := d.Outcome
	log := p.log.With(zap.String("request_id", uuid.NewString()), zap.String("key", out.Key))

	switch out.Kind {
	case trigger.Rejected:
		return d.Rejection, nil
	case trigger.Ignored:
		log.Debug("trigger ignored")
		return nil, nil
	case trigger.DeleteCascade:
		n, err := p.runner.Cascade(ctx, out.Source)
		if err != nil {
			return nil, err
		}
		log.Info("source deleted, variants removed", zap.String("source_key", out.Source.Key), zap.Int("deleted", n))
		return nil, nil
	case trigger.Accepted:
		derived, err := p.runner.Generate(ctx, out.Request)
		if err != nil {
			return nil, err
		}
		log.Info("variant generated", zap.String("derived_key", derived.Key), zap.String("content_type", derived.ContentType))
		return Redirect(p.baseURL, derived.Key), nil
	}
	return nil, fmt.Errorf("unknown outcome %v", out.Kind)
}
