package domain

// TokenPair is what a successful login or refresh hands back: a short-lived
// access token and a long-lived refresh token sharing one jti.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// Not serialised inside "tokens"; the handler lifts these to the top level.
	JTI       string `json:"-"`
	ExpiresIn int64  `json:"-"` // access token lifetime in seconds
}
