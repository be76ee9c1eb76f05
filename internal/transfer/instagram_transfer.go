package transfer

import "time"

// ShortLivedToken is the response of the authorization-code exchange.
type ShortLivedToken struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
}

// LongLivedToken is the response of the ig_exchange_token and
// ig_refresh_token calls.
type LongLivedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// InstagramToken is the resolved token handed back to callers once the
// exchange legs have completed.
type InstagramToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
}

type InstagramProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	AccountType       string `json:"account_type"`
	MediaCount        *int64 `json:"media_count,omitempty"`
	FollowersCount    *int64 `json:"followers_count,omitempty"`
	FollowsCount      *int64 `json:"follows_count,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Biography         string `json:"biography,omitempty"`
	Website           string `json:"website,omitempty"`
}

type InstagramMedia struct {
	ID               string `json:"id"`
	Caption          string `json:"caption,omitempty"`
	MediaType        string `json:"media_type"`
	MediaURL         string `json:"media_url,omitempty"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	Timestamp        string `json:"timestamp"`
	Permalink        string `json:"permalink,omitempty"`
	LikeCount        int64  `json:"like_count"`
	CommentsCount    int64  `json:"comments_count"`
	IsCommentEnabled bool   `json:"is_comment_enabled"`
	MediaProductType string `json:"media_product_type,omitempty"`
}

type InstagramMediaList struct {
	Data []InstagramMedia `json:"data"`
}

// GraphError is the error envelope the Graph API attaches to failed
// calls. Short-lived token exchanges report errors flat instead.
type GraphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
	ErrorType        string `json:"error_type"`
	ErrorMessage     string `json:"error_message"`
	ErrorDescription string `json:"error_description"`
}

// Message picks the most specific provider-supplied message out of the
// envelope, whichever shape the endpoint used.
func (e *GraphError) Message() string {
	switch {
	case e.Error.Message != "":
		return e.Error.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.ErrorMessage != "":
		return e.ErrorMessage
	}
	return ""
}
