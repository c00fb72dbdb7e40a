package authsdk

import (
	"context"
	"errors"
	"net/http"
)

const authAdminPath = "/auth-admin"

// PasswordGrant exchanges the admin password for a token pair.
func (c *SDKClient) PasswordGrant(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Password == "" {
		return nil, errors.New("password is required")
	}

	return c.requestToken(ctx, authAdminRequest{
		GrantType:    "password",
		Password:     req.Password,
		TwoFACode:    req.TwoFACode,
		CaptchaToken: req.CaptchaToken,
	})
}

// RefreshGrant rotates a refresh token. The old token stops working whether
// or not the reply reaches the caller.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	return c.requestToken(ctx, authAdminRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
}

func (c *SDKClient) requestToken(ctx context.Context, body authAdminRequest) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, authAdminPath, body, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
