package common

// Header names sent with every authenticated API request.
const (
	AuthorizationHeaderName = "Authorization"
	APIKeyHeaderName        = "X-Api-Key"
	AppVersionHeaderName    = "X-App-Version"
)
