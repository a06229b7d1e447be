// Package handler provides HTTP handlers for the SutraQuery service.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/biz"
	apierrors "github.com/ISHANT57/Gita-Chatbot/pkg/utils/errors"
)

// queryTimeout 限制单次问答的处理时长。
// 检索加 LLM 生成在正常情况下远低于此值，超时通常意味着上游服务故障。
const queryTimeout = 60 * time.Second

// Handler handles SutraQuery HTTP requests.
type Handler struct {
	service      biz.Service
	queryTimeout time.Duration
}

// NewHandler creates a new Handler.
func NewHandler(service biz.Service) *Handler {
	return &Handler{service: service, queryTimeout: queryTimeout}
}

// WithQueryTimeout overrides the query timeout.
func (h *Handler) WithQueryTimeout(d time.Duration) *Handler {
	h.queryTimeout = d
	return h
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SearchRequest represents a question request.
type SearchRequest struct {
	Question     string `json:"question" binding:"required"`
	SourceFilter string `json:"source_filter,omitempty"`
}

// Search answers a question against the indexed scriptures.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: apierrors.ErrRAGInvalidRequest.Code, Message: err.Error()})
		return
	}

	// 超时控制，超时后向客户端返回 408
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()

	result, err := h.service.Query(ctx, req.Question, req.SourceFilter)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(apierrors.ErrRAGQueryTimeout.HTTPStatus(), ErrorResponse{
				Code:    apierrors.ErrRAGQueryTimeout.Code,
				Message: "Query timeout: the request took too long to process. Please try again or simplify your question.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apierrors.ErrRAGQueryFailed.Code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// Verse looks up a single verse by chapter and verse number.
// The source defaults to the Bhagavad Gita and can be overridden
// with the ?source query parameter.
func (h *Handler) Verse(c *gin.Context) {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapter <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: apierrors.ErrRAGInvalidRequest.Code, Message: "chapter must be a positive integer"})
		return
	}
	verse, err := strconv.Atoi(c.Param("verse"))
	if err != nil || verse <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: apierrors.ErrRAGInvalidRequest.Code, Message: "verse must be a positive integer"})
		return
	}

	source := c.Query("source")

	v, err := h.service.SearchByVerse(c.Request.Context(), source, chapter, verse)
	if err != nil {
		if err == biz.ErrVerseNotFound {
			c.JSON(apierrors.ErrRAGVerseNotFound.HTTPStatus(), ErrorResponse{Code: apierrors.ErrRAGVerseNotFound.Code, Message: "verse not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apierrors.ErrRAGQueryFailed.Code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: v})
}

// Stats returns knowledge base statistics.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apierrors.ErrRAGStatsUnavailable.Code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: stats})
}

// InitializeRequest represents an index build request.
type InitializeRequest struct {
	ForceReload bool `json:"force_reload"`
}

// Initialize builds or rebuilds the vector index from the corpus files.
func (h *Handler) Initialize(c *gin.Context) {
	var req InitializeRequest
	// 请求体可为空，等价于 force_reload=false
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: apierrors.ErrRAGInvalidRequest.Code, Message: err.Error()})
			return
		}
	}

	report, err := h.service.Initialize(c.Request.Context(), req.ForceReload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apierrors.ErrRAGIndexFailed.Code, Message: err.Error()})
		return
	}

	message := "Knowledge base initialized successfully"
	if report.Skipped {
		message = "Knowledge base already initialized"
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: message, Data: report})
}

// Healthz reports service liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
