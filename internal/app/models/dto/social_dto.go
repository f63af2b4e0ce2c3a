package dto

// FollowResponse reports the outcome of a follow request. Created is false
// when the edge already existed.
type FollowResponse struct {
	Following bool `json:"following"`
	Created   bool `json:"created"`
}

// SuggestedFollowsResponse lists recently active users the caller does not
// follow yet
type SuggestedFollowsResponse struct {
	Users []UserBasicResponse `json:"users"`
}
