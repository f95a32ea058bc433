// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// Client application secrets are read from a credentials file downloaded from
// the Google Cloud console. User tokens are cached in a TokenStore (a JSON file
// by default) and reused across runs. When no usable token exists, an
// interactive installed-app flow is started on a loopback address; when the
// cached token has expired but carries a refresh token, it is refreshed in
// place. Every new or refreshed token is written back to the store.
//
// Example usage:
//
//	conf, err := google.LoadClientConfig("credentials.json", google.DefaultOAuthScopes...)
//	if err != nil {
//	    return err
//	}
//	auth, err := google.NewAuthenticator(google.AuthenticatorConfig{
//	    OAuthConfig: conf,
//	    Store:       google.NewFileTokenStore("token.json"),
//	    Flow:        &google.LocalServerFlow{Out: os.Stderr},
//	})
//	if err != nil {
//	    return err
//	}
//	ts, err := auth.TokenSource(ctx)
package google
