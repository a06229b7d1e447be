package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ISHANT57/Gita-Chatbot/pkg/utils/errors"
)

// Writer provides convenient methods to write responses to a gin context.
type Writer struct {
	ctx       *gin.Context
	withTime  bool
	requestID string
	lang      string
}

// NewWriter creates a new response writer for the given context.
func NewWriter(ctx *gin.Context) *Writer {
	return &Writer{ctx: ctx}
}

// WithTimestamp enables automatic timestamp in responses.
func (w *Writer) WithTimestamp() *Writer {
	w.withTime = true
	return w
}

// WithRequestID sets the request ID for responses.
func (w *Writer) WithRequestID(requestID string) *Writer {
	w.requestID = requestID
	return w
}

// WithLang sets the language for error messages.
func (w *Writer) WithLang(lang string) *Writer {
	w.lang = lang
	return w
}

// prepare adds optional fields to the response.
func (w *Writer) prepare(r *Response) *Response {
	if w.withTime {
		r.Timestamp = time.Now().UnixMilli()
	}
	if w.requestID != "" {
		r.RequestID = w.requestID
	}
	return r
}

// OK sends a successful response with data.
func (w *Writer) OK(data interface{}) {
	resp := w.prepare(Success(data))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// OKWithMessage sends a successful response with custom message.
func (w *Writer) OKWithMessage(message string, data interface{}) {
	resp := w.prepare(SuccessWithMessage(message, data))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// Fail sends an error response using Errno.
func (w *Writer) Fail(e *errors.Errno) {
	var resp *Response
	if w.lang != "" {
		resp = w.prepare(ErrWithLang(e, w.lang))
	} else {
		resp = w.prepare(Err(e))
	}
	w.ctx.JSON(e.HTTPStatus(), resp)
}

// FailWithLang sends an error response with language-specific message.
func (w *Writer) FailWithLang(e *errors.Errno, lang string) {
	resp := w.prepare(ErrWithLang(e, lang))
	w.ctx.JSON(e.HTTPStatus(), resp)
}

// FailWithCode sends an error response with code and message.
func (w *Writer) FailWithCode(code int, message string) {
	resp := w.prepare(ErrorWithCode(code, message))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// FailWithError converts a standard error and sends it.
// If the error is an Errno, it uses it directly.
// Otherwise, it wraps it as ErrInternal.
func (w *Writer) FailWithError(err error) {
	w.Fail(errors.FromError(err))
}

// PageOK sends a paginated response.
func (w *Writer) PageOK(list interface{}, total int64, page, pageSize int) {
	resp := w.prepare(Page(list, total, page, pageSize))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// Send sends a custom response.
func (w *Writer) Send(r *Response) {
	resp := w.prepare(r)
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// ============================================================================
// Convenience functions that work directly with *gin.Context
// ============================================================================

// OK sends a successful response.
func OK(ctx *gin.Context, data interface{}) {
	NewWriter(ctx).OK(data)
}

// OKWithMessage sends a successful response with message.
func OKWithMessage(ctx *gin.Context, message string, data interface{}) {
	NewWriter(ctx).OKWithMessage(message, data)
}

// Fail sends an error response using Errno.
func Fail(ctx *gin.Context, e *errors.Errno) {
	NewWriter(ctx).Fail(e)
}

// FailWithLang sends an error response with language-specific message.
func FailWithLang(ctx *gin.Context, e *errors.Errno, lang string) {
	NewWriter(ctx).FailWithLang(e, lang)
}

// FailWithCode sends an error response with code and message.
func FailWithCode(ctx *gin.Context, code int, message string) {
	NewWriter(ctx).FailWithCode(code, message)
}

// FailWithError converts a standard error and sends it.
func FailWithError(ctx *gin.Context, err error) {
	NewWriter(ctx).FailWithError(err)
}
