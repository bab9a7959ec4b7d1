package constants

// Chat platform error codes
const (
	ErrCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeMissingPermissions = "MISSING_PERMISSIONS"
	ErrCodeResourceNotFound   = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat  = "INVALID_DATA_FORMAT"
	ErrCodeUnknownPermission  = "UNKNOWN_PERMISSION"
)

var PlatformErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:      "The bot token is invalid or has been revoked",
	ErrCodeRateLimited:        "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:       "Unable to reach the chat platform",
	ErrCodeMissingPermissions: "The bot is missing permissions for this action",
	ErrCodeResourceNotFound:   "The requested chat resource does not exist",
	ErrCodeInvalidDataFormat:  "The chat platform rejected the request payload",
	ErrCodeUnknownPermission:  "The permission name is not known to the chat platform",
}

// GetErrorMessage returns the human message for an error code
func GetErrorMessage(code string) string {
	if msg, ok := PlatformErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}
