/*
Package authsdk is the Go client for the campus auth API.

Create an SDKClient for the public endpoints and log in to get a Session:

	client := authsdk.NewSDKClient("https://campus.example.com")

	session, err := client.Authenticate(ctx, "alice@example.com", password, "")
	if errors.Is(err, authsdk.ErrCodeRequired) {
		session, err = client.Authenticate(ctx, "alice@example.com", password, otp)
	}

	me, err := session.Me(ctx)

Failures from the server are decoded into *APIError and compare equal to the
predefined errors by code, so errors.Is(err, authsdk.ErrAccountLocked)
works on the client side. The same values are written by the server
handlers through APIError.WriteError.

Tokens are not refreshed. Once a token expires, Session methods return
ErrSessionExpired without calling the server.
*/
package authsdk
