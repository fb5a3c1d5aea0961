package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// AnswerRequest is the body of POST /answer
type AnswerRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     *int   `json:"top_k,omitempty" validate:"omitempty,min=1"`
}

// AnswerHandler serves question answering
type AnswerHandler struct {
	answerService interfaces.AnswerService
	config        *common.AnswerConfig
	validate      *validator.Validate
	logger        arbor.ILogger
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerService interfaces.AnswerService, config *common.AnswerConfig, logger arbor.ILogger) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		config:        config,
		validate:      validator.New(),
		logger:        logger,
	}
}

// AnswerHandler handles POST /answer
func (h *AnswerHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	topK := h.config.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if h.config.MaxTopK > 0 && topK > h.config.MaxTopK {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("top_k must be at most %d", h.config.MaxTopK))
		return
	}

	answer, err := h.answerService.Answer(r.Context(), req.Question, topK)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to answer question")
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}

// validationMessage flattens validator errors into one line per field
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", jsonFieldName(fe.Field())))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", jsonFieldName(fe.Field()), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", jsonFieldName(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

func jsonFieldName(field string) string {
	switch field {
	case "TopK":
		return "top_k"
	default:
		return strings.ToLower(field)
	}
}
