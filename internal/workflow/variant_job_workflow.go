package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/image-variants/internal/activities"
	"github.com/yourorg/image-variants/internal/types"
)

// Name is the registered workflow type name.
const Name = "VariantJobWorkflow"

// VariantJobWorkflow runs one generation or cascade handed off by the API.
// Retries happen here, at the platform level; the activities never retry.
func VariantJobWorkflow(ctx workflow.Context, p types.VariantJobParams) (types.VariantJobResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	switch p.Action {
	case types.ActionGenerate:
		if p.Generate == nil {
			return types.VariantJobResult{}, temporal.NewNonRetryableApplicationError("generate job without parameters", "InvalidJob", nil)
		}
		var res types.GenerateResult
		if err := workflow.ExecuteActivity(ctx, activities.GenerateVariantName, *p.Generate).Get(ctx, &res); err != nil {
			return types.VariantJobResult{}, err
		}
		logger.Info("variant generated", "derived_key", res.DerivedKey, "content_type", res.ContentType)
		return types.VariantJobResult{Action: p.Action, Generate: &res}, nil

	case types.ActionCascade:
		if p.Cascade == nil {
			return types.VariantJobResult{}, temporal.NewNonRetryableApplicationError("cascade job without parameters", "InvalidJob", nil)
		}
		// Cascades can run longer than a single generation on large namespaces.
		cascadeAO := ao
		cascadeAO.StartToCloseTimeout = 30 * time.Minute
		cctx := workflow.WithActivityOptions(ctx, cascadeAO)
		var res types.CascadeResult
		if err := workflow.ExecuteActivity(cctx, activities.CascadeDeleteName, *p.Cascade).Get(ctx, &res); err != nil {
			return types.VariantJobResult{}, err
		}
		logger.Info("cascade complete", "source_key", p.Cascade.SourceKey, "deleted", res.Deleted)
		return types.VariantJobResult{Action: p.Action, Cascade: &res}, nil
	}
	return types.VariantJobResult{}, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown job action %q", p.Action), "InvalidJob", nil)
}
