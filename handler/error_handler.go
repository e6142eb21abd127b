package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/seacatering/pkg/binder"
	"github.com/dmitrymomot/seacatering/pkg/i18n"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

// ErrorMapping binds a sentinel error to a status and a public code. The
// client message is the translation of "error.<Code>".
type ErrorMapping struct {
	Target error
	Status int
	Code   string
}

// ErrorInfo is the classification of an error.
type ErrorInfo struct {
	Status   int
	Code     string
	LogLevel slog.Level
}

const codeValidation = "validation_error"

var internalInfo = ErrorInfo{Status: http.StatusInternalServerError, Code: "internal", LogLevel: slog.LevelError}

// builtinMappings cover request decoding failures.
var builtinMappings = []ErrorMapping{
	{Target: binder.ErrBodyTooLarge, Status: http.StatusRequestEntityTooLarge, Code: "bad_request"},
	{Target: binder.ErrUnsupportedMediaType, Status: http.StatusUnsupportedMediaType, Code: "bad_request"},
	{Target: binder.ErrMissingContentType, Status: http.StatusUnsupportedMediaType, Code: "bad_request"},
	{Target: binder.ErrFailedToParseJSON, Status: http.StatusBadRequest, Code: "bad_request"},
	{Target: binder.ErrFailedToParseQuery, Status: http.StatusBadRequest, Code: "bad_request"},
	{Target: binder.ErrFailedToParsePath, Status: http.StatusNotFound, Code: "not_found"},
}

// ErrorResponder renders errors as localised JSON envelopes. Server errors
// are logged with the request id and never expose the underlying message.
type ErrorResponder struct {
	tr       *i18n.Translator
	log      *slog.Logger
	mappings []ErrorMapping
}

// NewErrorResponder matches errors against mappings in order, then against
// the binder failures. Put specific sentinels before generic ones.
func NewErrorResponder(tr *i18n.Translator, log *slog.Logger, mappings ...ErrorMapping) *ErrorResponder {
	if tr == nil {
		panic("handler: translator is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ErrorResponder{
		tr:       tr,
		log:      log,
		mappings: append(append([]ErrorMapping{}, mappings...), builtinMappings...),
	}
}

// Classify returns how err is reported.
func (e *ErrorResponder) Classify(err error) ErrorInfo {
	if validator.IsValidationError(err) {
		return ErrorInfo{Status: http.StatusUnprocessableEntity, Code: codeValidation, LogLevel: slog.LevelDebug}
	}
	for _, m := range e.mappings {
		if errors.Is(err, m.Target) {
			level := slog.LevelDebug
			if m.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			return ErrorInfo{Status: m.Status, Code: m.Code, LogLevel: level}
		}
	}
	return internalInfo
}

// Handle satisfies ErrorHandler.
func (e *ErrorResponder) Handle(ctx Context, err error) {
	e.Write(ctx.ResponseWriter(), ctx.Request(), err)
}

// Write has the shape identity.WithErrorResponder expects.
func (e *ErrorResponder) Write(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	info := e.Classify(err)
	lang := i18n.GetLocale(ctx)
	reqID := middleware.GetReqID(ctx)

	e.log.Log(ctx, info.LogLevel, "request failed",
		slog.Int("status", info.Status),
		slog.String("code", info.Code),
		logger.RequestID(reqID),
		logger.Error(err),
	)

	detail := &ErrorDetail{Code: info.Code, RequestID: reqID}
	if info.Code == codeValidation {
		detail.Message = e.tr.T(lang, "validation.failed")
		detail.Details = e.validationDetails(lang, validator.ExtractValidationErrors(err))
	} else {
		detail.Message = e.tr.T(lang, "error."+info.Code)
	}

	if rerr := JSONError(info.Status, detail).Render(w, r); rerr != nil {
		e.log.ErrorContext(ctx, "failed to render error response", logger.Error(rerr))
	}
}

func (e *ErrorResponder) validationDetails(lang string, verrs validator.ValidationErrors) map[string][]string {
	if len(verrs) == 0 {
		return nil
	}
	details := make(map[string][]string, len(verrs))
	for _, ve := range verrs {
		msg := ve.Message
		if ve.TranslationKey != "" {
			msg = e.tr.TMap(lang, ve.TranslationKey, ve.TranslationValues)
		}
		details[ve.Field] = append(details[ve.Field], msg)
	}
	return details
}
