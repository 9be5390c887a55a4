package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/solubility-bench/internal/application/prediction"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// PredictHandler exposes the prediction service.
type PredictHandler struct {
	svc    prediction.Service
	logger logging.Logger
}

func NewPredictHandler(svc prediction.Service, logger logging.Logger) *PredictHandler {
	return &PredictHandler{svc: svc, logger: logging.OrDefault(logger)}
}

// ModelsResponse lists the loaded models.
type ModelsResponse struct {
	Models []prediction.ModelInfo `json:"models"`
}

// Predict handles POST /api/v1/predict.  Per-molecule failures are reported
// inside a 200 response; only request-level problems map to error statuses.
func (h *PredictHandler) Predict(c *gin.Context) {
	var input prediction.PredictInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.svc.Predict(c.Request.Context(), &input)
	if err != nil {
		h.logger.Debug("prediction rejected", logging.String("model", input.Model), logging.Err(err))
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Models handles GET /api/v1/models.
func (h *PredictHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsResponse{Models: h.svc.Models()})
}

//Personal.AI order the ending
