package constants

// Session
const (
	SessionCookieName = "projectflow_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxTitleLength    = 255

	MinRawWeight = 1
	MaxRawWeight = 5
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
