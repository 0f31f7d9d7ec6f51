package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/yourorg/image-variants/internal/types"
)

type WorkflowHandler struct {
	temporalClient client.Client
}

func NewWorkflowHandler(temporalClient client.Client) *WorkflowHandler {
	return &WorkflowHandler{temporalClient: temporalClient}
}

// GetWorkflowStatus reports a handed-off job.
func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	workflowID := c.Param("id")
	if workflowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workflow ID is required"})
		return
	}

	describe, err := h.temporalClient.DescribeWorkflowExecution(c.Request.Context(), workflowID, "")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "failed to describe workflow: " + err.Error()})
		return
	}
	info := describe.GetWorkflowExecutionInfo()
	status := info.GetStatus().String()
	if info.GetStatus() != enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		c.JSON(http.StatusOK, gin.H{
			"workflow_id": workflowID,
			"status":      status,
			"start_time":  info.GetStartTime(),
		})
		return
	}

	var result types.VariantJobResult
	if err := h.temporalClient.GetWorkflow(c.Request.Context(), workflowID, "").Get(c.Request.Context(), &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow_id": workflowID,
		"status":      status,
		"result":      result,
	})
}
