package apiclient

import "errors"

var (
	NoRefreshTokenErr   = errors.New("no refresh token stored")
	RefreshRejectedErr  = errors.New("refresh response missing access token")
	EmptyCredentialsErr = errors.New("login id and password are required")
)
