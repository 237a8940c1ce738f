package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
)

/* ============================== JWT Claims ============================== */

// Claims is the payload of a Supabase access token.
type Claims struct {
	Sub   string `json:"sub"`  // user ID
	Role  string `json:"role"` // "authenticated" for signed-in staff
	Email string `json:"email"`
	jwt.RegisteredClaims
}

/* ============================== Middleware ============================== */

// RoleStaff is the token role of a signed-in back-office user.
const RoleStaff = "authenticated"

// RequireAuth validates a Bearer JWT signed with the project's JWT secret and
// injects userID and role into the context.
func RequireAuth(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			return fiber.ErrUnauthorized
		}
		tokenStr := strings.TrimPrefix(h, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fiber.ErrUnauthorized
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.Sub == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals("userID", claims.Sub)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// MustUserID reads the authenticated user ID from context or panics (programming error).
func MustUserID(c *fiber.Ctx) string {
	if v := c.Locals("userID"); v != nil {
		return v.(string)
	}
	panic(errors.New("user not in context"))
}

// MustRole reads the authenticated user role from context or panics (programming error).
func MustRole(c *fiber.Ctx) string {
	if v := c.Locals("role"); v != nil {
		return v.(string)
	}
	panic(errors.New("role not in context"))
}

// RequireRole ensures the authenticated user has the expected role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if MustRole(c) != role {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

/* =========================== Error Formatting =========================== */

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusMultiStatus:
		return "PARTIAL_FAILURE"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// NewErrorHandler returns the global Fiber error handler. Domain errors map to
// their status; anything unrecognised is logged and answered with a 500.
// A multi-step command that failed midway leaves its step report in
// Locals("saga_report"), which is echoed in the body.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			ve *apperrors.ValidationError
			nf *apperrors.NotFoundError
			ce *apperrors.ConflictError
			te *apperrors.TransientIOError
			pb *apperrors.PartialBatchFailure
			fe *fiber.Error
		)

		code := fiber.StatusInternalServerError
		msg := "Internal Server Error"

		switch {
		case errors.As(err, &ve):
			return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
				Message: "Validation failed",
				Errors:  ve.Fields,
			})
		case errors.As(err, &pb):
			return c.Status(fiber.StatusMultiStatus).JSON(models.BatchFailureResponse{
				Error:     true,
				Message:   pb.Error(),
				Code:      httpCodeToString(fiber.StatusMultiStatus),
				Succeeded: pb.Succeeded,
				Failed:    pb.Failed,
			})
		case errors.As(err, &nf):
			code, msg = fiber.StatusNotFound, nf.Error()
		case errors.As(err, &ce):
			code, msg = fiber.StatusConflict, ce.Error()
		case errors.As(err, &te):
			code, msg = fiber.StatusServiceUnavailable, "Service temporarily unavailable, please retry"
			log.Warn("backend unavailable", zap.String("path", c.Path()), zap.Error(err))
		case errors.As(err, &fe):
			code = fe.Code
			if strings.TrimSpace(fe.Message) != "" {
				msg = fe.Message
			} else {
				msg = fiber.NewError(code).Message
			}
		default:
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Code:    httpCodeToString(code),
			Error:   true,
			Message: msg,
			Report:  c.Locals("saga_report"),
		})
	}
}
