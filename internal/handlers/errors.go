package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/flowtrack/flowtrack-api/internal/errors"
	"github.com/flowtrack/flowtrack-api/internal/logger"
	"github.com/flowtrack/flowtrack-api/internal/services"
	"github.com/flowtrack/flowtrack-api/internal/utils"
)

func init() {
	// Report binding failures with JSON field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// respondError maps service errors onto the API error envelope.
// Unknown errors are logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	var transitionErr *services.TransitionError

	switch {
	case errors.As(err, &transitionErr):
		apierrors.InvalidTransition(c, transitionErr.Error(), gin.H{
			"from":    transitionErr.From,
			"to":      transitionErr.To,
			"allowed": transitionErr.From.NextStatuses(),
		})

	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrPermissionDenied),
		errors.Is(err, services.ErrNotTaskAssignee),
		errors.Is(err, services.ErrUnassignedFilterForbidden):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrAssigneeNotEmployee),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidAssignedFilter),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrFullNameRequired),
		errors.Is(err, services.ErrPasswordTooLong),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrDraftTextRequired),
		utils.IsPaginationError(err):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())

	case errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, "Could not validate credentials")

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())

	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())

	default:
		log := logger.Get()
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("unhandled error")
		apierrors.InternalError(c, "")
	}
}

// respondBindError reports a request body or query that failed to bind.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fieldError(fe)
		}
		apierrors.BadRequestWithDetails(c, "Validation failed", details)
		return
	}
	apierrors.BadRequest(c, "Invalid request body")
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid UUID"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
