package dto

// Res is the generic response envelope.
type Res struct {
	ResponseCode    string      `json:"response_code"`
	ResponseMessage string      `json:"response_message"`
	Data            interface{} `json:"data,omitempty"`
}

// ResConnect returns the authorization URL the frontend must open.
type ResConnect struct {
	URL        string `json:"url"`
	State      string `json:"state"`
	ShopDomain string `json:"shopDomain,omitempty"`
}

// ResSync summarizes one sync run: stored record counts per data type.
type ResSync struct {
	Platform string         `json:"platform"`
	Synced   map[string]int `json:"synced"`
	SyncedAt string         `json:"syncedAt"`
}

// ResAuth is returned by login/register.
type ResAuth struct {
	Token             string          `json:"token"`
	ConnectedChannels map[string]bool `json:"connectedChannels,omitempty"`
}
