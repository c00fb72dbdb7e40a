/*
Package authsdk is a Go client for the siteadmin authentication service.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints (login, refresh, health
probes) and creates Sessions. A Session carries an access/refresh pair and
refreshes it before the access token expires:

	client := authsdk.NewSDKClient("https://admin.example.com")

	session, err := client.Login(ctx, authsdk.LoginRequest{Password: pw})
	if authsdk.IsLockedOut(err) {
		// five failures inside a minute; wait out the lockout
	}

	page, err := session.ListLoginLogs(ctx, authsdk.LoginLogsQuery{Limit: 20})

	err = session.Logout(ctx)

# Refresh rotation

Refresh tokens are single use. Every refresh replaces both tokens held by
the Session, so one Session must not be cloned across processes; share the
*Session between goroutines instead. It is safe for concurrent use.

# Errors

Non-2xx replies become *APIError carrying the HTTP status, the machine
readable code from the JSON body and, for 429s, the Retry-After delay.
*/
package authsdk
