package session

import (
	"net/url"
	"strings"
)

// CallbackParams are the parameters the provider hands back on the
// redirect, from either the query string or a fragment-embedded query.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorReason      string
	ErrorDescription string
}

// ParseCallback extracts callback parameters from a redirect URL. Some
// provider configurations deliver them in the fragment instead of the
// query string; both are checked, and the query string wins.
func ParseCallback(rawURL string) (CallbackParams, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CallbackParams{}, err
	}

	params := fromValues(u.Query())

	if u.Fragment != "" {
		fragment := u.Fragment
		// fragments like "#/path?code=..." carry their own query part
		if idx := strings.Index(fragment, "?"); idx >= 0 {
			fragment = fragment[idx+1:]
		}
		if values, err := url.ParseQuery(fragment); err == nil {
			merge(&params, fromValues(values))
		}
	}

	return params, nil
}

func fromValues(values url.Values) CallbackParams {
	return CallbackParams{
		Code:             values.Get("code"),
		State:            values.Get("state"),
		Error:            values.Get("error"),
		ErrorReason:      values.Get("error_reason"),
		ErrorDescription: values.Get("error_description"),
	}
}

// merge fills only the fields the query string left empty.
func merge(dst *CallbackParams, src CallbackParams) {
	if dst.Code == "" {
		dst.Code = src.Code
	}
	if dst.State == "" {
		dst.State = src.State
	}
	if dst.Error == "" {
		dst.Error = src.Error
	}
	if dst.ErrorReason == "" {
		dst.ErrorReason = src.ErrorReason
	}
	if dst.ErrorDescription == "" {
		dst.ErrorDescription = src.ErrorDescription
	}
}

// StripAuthParams removes the code and state parameters from a URL, the
// way the browser client cleans its address bar after an exchange.
func StripAuthParams(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	q.Del("code")
	q.Del("state")
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}
