package models

// CheckSumRecord is the single per-installation row holding the last-known
// server checksum for every synchronized category. An empty string means the
// category has never been fetched on this device.
type CheckSumRecord struct {
	UserPoints string `json:"userPoints"`
	Rank       string `json:"rank"`
	Messages   string `json:"messages"`
	Events     string `json:"events"`
	Points     string `json:"points"`
}

// Get returns the stored checksum for the given category.
func (c *CheckSumRecord) Get(category Category) string {
	switch category {
	case CategoryUserPoints:
		return c.UserPoints
	case CategoryRank:
		return c.Rank
	case CategoryMessages:
		return c.Messages
	case CategoryEvents:
		return c.Events
	case CategoryGenericPoints:
		return c.Points
	}
	return ""
}

// Set stores the checksum for the given category. Unknown categories are
// ignored.
func (c *CheckSumRecord) Set(category Category, sum string) {
	switch category {
	case CategoryUserPoints:
		c.UserPoints = sum
	case CategoryRank:
		c.Rank = sum
	case CategoryMessages:
		c.Messages = sum
	case CategoryEvents:
		c.Events = sum
	case CategoryGenericPoints:
		c.Points = sum
	}
}

// ClearUserData resets the user-specific checksums. The generic-points
// checksum is not user-bound and survives an ordinary logout; it is only
// dropped on an account switch.
func (c *CheckSumRecord) ClearUserData() {
	c.UserPoints = ""
	c.Rank = ""
	c.Messages = ""
	c.Events = ""
}
