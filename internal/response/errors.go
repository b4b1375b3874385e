package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrNotLoggedIn        ErrCode = "NOT_LOGGED_IN"
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrNotAuthorized    ErrCode = "NOT_AUTHORIZED"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"
	ErrUserAccessOnly   ErrCode = "USER_ACCESS_ONLY"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrAgeRestricted    ErrCode = "AGE_RESTRICTED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidTime    ErrCode = "INVALID_TIME"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal           ErrCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrNotLoggedIn:
		return "You are not logged in"
	case ErrInvalidCredentials:
		return "Wrong email or password."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrNotAuthorized:
		return "You are not authorized."
	case ErrAdminAccessOnly:
		return "This resource is restricted to admins."
	case ErrUserAccessOnly:
		return "This resource is restricted to users."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrAgeRestricted:
		return "You do not meet the minimum age for this event."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidTime:
		return "Invalid event time."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "No image file uploaded."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	case ErrServiceUnavailable:
		return "Service unavailable."
	default:
		return "Unexpected error."
	}
}
