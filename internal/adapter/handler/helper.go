package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/errors"
	"github.com/johnquangdev/interview-scoring/internal/adapter/dto/common"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusOK, data)
}

// HandleAccepted writes a 202 for work that continues in the background
func HandleAccepted(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusAccepted, data)
}

func handleStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError maps domain errors onto API errors. Upstream failures never
// carry their cause to the client; it is logged instead.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := errors.FromDomain(err)

	if logger != nil {
		level := logger.Warn
		if appErr.HTTPCode >= http.StatusInternalServerError {
			level = logger.Error
		}
		level("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil && appErr.HTTPCode < http.StatusInternalServerError {
		info = appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, common.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	})
}

// pathUUID parses a uuid path parameter
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("Invalid " + name).WithDetail(name, c.Param(name))
	}
	return id, nil
}

// claimsFrom returns the caller set by the auth middleware
func claimsFrom(c echo.Context) (*jwt.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return nil, errors.ErrUnauthenticated()
	}
	return claims, nil
}

// sameOrg reports whether the caller may see data of the given organisation.
// Service tokens carry no organisation and see every tenant.
func sameOrg(claims *jwt.Claims, orgID uuid.UUID) bool {
	if claims.OrgID == "" {
		return claims.Role == jwt.RoleService || claims.Role == jwt.RoleAdmin
	}
	return claims.OrgID == orgID.String()
}
