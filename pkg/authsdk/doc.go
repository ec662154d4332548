/*
Package authsdk is the client for the Owner Portal backend API.

# Overview

The package is organized around two types:

  - SDKClient: unauthenticated operations, currently the credential exchange
  - Session: authenticated calls that carry the bearer credential

Exchange credentials for tokens:

	client := authsdk.NewSDKClient("http://localhost:3000/api", 30*time.Second)

	result, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "owner@example.com",
		Password: "secret1",
	})

Login unwraps the backend envelope ({code, message, result}) and checks the
shape of result before returning it. A 2xx response whose result lacks
accessToken, userId, email or role fails with ErrInvalidServerResponse.

# Sessions

A Session does not own tokens. It asks a TokenSource for the current access
token on every request, so whoever owns the session state stays the single
writer:

	session := client.NewSession(gate, gate.HandleUnauthorized)

	resp, err := session.Do(ctx, http.MethodGet, "/rooms", nil, nil)
	if errors.Is(err, authsdk.ErrUnauthorized) {
		// the unauthorized hook has already run
	}

When the backend answers 401 the hook is called before Do returns, and the
response body is discarded.

# Error Handling

  - *APIError: the backend answered with a non-2xx status. Message carries the
    backend's own message when it sent one.
  - ErrInvalidServerResponse: a 2xx response that does not match the schema.
  - ErrUnauthorized: a Session call was rejected with 401.
  - anything else: the request never completed (DNS, refused, timeout).

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
