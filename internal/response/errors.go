package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly  ErrCode = "TEACHER_ACCESS_ONLY"
	ErrNotAssignmentOwner ErrCode = "NOT_ASSIGNMENT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrAssignmentNotFound ErrCode = "ASSIGNMENT_NOT_FOUND"
	ErrConflict           ErrCode = "CONFLICT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Access token required."
	case ErrTokenInvalid:
		return "Invalid token."
	case ErrTokenExpired:
		return "Token expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Access denied."
	case ErrTeacherAccessOnly:
		return "Teacher access required."
	case ErrNotAssignmentOwner:
		return "You can only modify your own assignments."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed."
	case ErrInvalidPayload:
		return "Request payload is not valid JSON."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrAssignmentNotFound:
		return "Assignment not found."
	case ErrConflict:
		return "A user with this email already exists."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Something went wrong."
	default:
		return "An unexpected error occurred."
	}
}
