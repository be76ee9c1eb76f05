package transfer

// ExchangeRequest is the body of POST /auth/instagram/exchange. State
// is the signed value from the authorize redirect; clients that entered
// the flow elsewhere may omit it.
type ExchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// ExchangeResponse mirrors the payload the browser client stores: the
// profile, the cached posts and the long-lived token.
type ExchangeResponse struct {
	Success bool             `json:"success"`
	User    InstagramProfile `json:"user"`
	Posts   []InstagramMedia `json:"posts"`
	Token   InstagramToken   `json:"token"`
}

// RefreshRequest is the body of POST /auth/instagram/refresh.
type RefreshRequest struct {
	AccessToken string `json:"access_token"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"`
}
