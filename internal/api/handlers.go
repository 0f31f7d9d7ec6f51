package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/image-variants/internal/pipeline"
	"github.com/yourorg/image-variants/internal/trigger"
	"github.com/yourorg/image-variants/internal/types"
	"github.com/yourorg/image-variants/internal/variant"
	"github.com/yourorg/image-variants/internal/workflow"
)

// maxEnvelopeBytes bounds notification and invocation bodies.
const maxEnvelopeBytes = 1 << 20

// Starter is the part of client.Client used to hand off storage events.
type Starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error)
}

type Handler struct {
	pipe      *pipeline.Pipeline
	starter   Starter
	taskQueue string
	log       *zap.Logger
}

// NewHandler builds the HTTP adapter. With a nil starter storage events run
// inline like every other trigger.
func NewHandler(pipe *pipeline.Pipeline, starter Starter, taskQueue string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{pipe: pipe, starter: starter, taskQueue: taskQueue, log: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Health)
	r.GET("/resize", h.Resize)
	r.POST("/events", h.Events)
	r.POST("/invoke", h.Invoke)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Resize serves a direct request for the key in the query string.
func (h *Handler) Resize(c *gin.Context) {
	t := trigger.Trigger{Direct: &trigger.DirectRequest{Key: c.Query("key")}}
	resp, err := h.pipe.Handle(c.Request.Context(), t)
	h.write(c, resp, err)
}

// Invoke accepts the gateway envelope and always runs inline.
func (h *Handler) Invoke(c *gin.Context) {
	env, ok := h.envelope(c)
	if !ok {
		return
	}
	t, dropped, err := env.Trigger()
	if err != nil {
		h.write(c, pipeline.Reject(err), nil)
		return
	}
	h.logDropped(dropped)
	resp, err := h.pipe.Handle(c.Request.Context(), t)
	h.write(c, resp, err)
}

// Events accepts an S3 notification document. Accepted work is handed to
// Temporal when a starter is configured.
func (h *Handler) Events(c *gin.Context) {
	env, ok := h.envelope(c)
	if !ok {
		return
	}
	env.QueryStringParameters = nil
	t, dropped, err := env.Trigger()
	if err != nil {
		h.write(c, pipeline.Reject(err), nil)
		return
	}
	h.logDropped(dropped)

	d := h.pipe.Decide(t)
	if h.starter == nil || (d.Outcome.Kind != trigger.Accepted && d.Outcome.Kind != trigger.DeleteCascade) {
		resp, err := h.pipe.Execute(c.Request.Context(), d)
		h.write(c, resp, err)
		return
	}

	params := jobFor(d.Outcome)
	opts := client.StartWorkflowOptions{
		ID:        "image-variant-" + params.Action + "-" + uuid.NewString(),
		TaskQueue: h.taskQueue,
	}
	run, err := h.starter.ExecuteWorkflow(c.Request.Context(), opts, workflow.Name, params)
	if err != nil {
		h.log.Error("start workflow", zap.String("key", d.Outcome.Key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start workflow: " + err.Error()})
		return
	}
	h.log.Info("job handed off", zap.String("key", d.Outcome.Key), zap.String("action", params.Action), zap.String("workflow_id", run.GetID()))
	c.JSON(http.StatusAccepted, StartWorkflowResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()})
}

type StartWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

func jobFor(out trigger.Outcome) types.VariantJobParams {
	if out.Kind == trigger.DeleteCascade {
		return types.VariantJobParams{
			Action:  types.ActionCascade,
			Cascade: &types.CascadeParams{SourceKey: out.Source.Key},
		}
	}
	return types.VariantJobParams{
		Action: types.ActionGenerate,
		Generate: &types.GenerateParams{
			SourceKey:  out.Request.SourceKey,
			DerivedKey: out.Request.DerivedKey,
			Width:      out.Request.Spec.Width,
			Height:     out.Request.Spec.Height,
		},
	}
}

func (h *Handler) envelope(c *gin.Context) (trigger.Envelope, bool) {
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEnvelopeBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return trigger.Envelope{}, false
	}
	env, err := trigger.DecodeEnvelope(b)
	if err != nil {
		h.write(c, pipeline.Reject(err), nil)
		return trigger.Envelope{}, false
	}
	return env, true
}

func (h *Handler) logDropped(n int) {
	if n > 0 {
		h.log.Warn("extra notification records dropped", zap.Int("dropped", n))
	}
}

// write maps a pipeline result onto HTTP. A nil response means there is
// nothing to return.
func (h *Handler) write(c *gin.Context, resp *pipeline.Response, err error) {
	if err != nil && pipeline.IsRejection(err) {
		h.log.Warn("invocation rejected", zap.Error(err))
		resp, err = pipeline.Reject(err), nil
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, variant.ErrSourceNotFound) {
			status = http.StatusNotFound
		}
		h.log.Error("invocation failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.String(resp.StatusCode, resp.Body)
}
