package profile

type Stats struct {
	ListCount int `json:"list_count"`
}

type Profile struct {
	VisitorID string   `json:"visitor_id"`
	Items     []string `json:"items"`
	Stats     Stats    `json:"stats"`
}
