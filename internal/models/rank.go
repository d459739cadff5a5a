package models

// RankEntry is one row of a category leaderboard.
type RankEntry struct {
	UserID string
	Nick   string
	Points int
	Order  int
}

// Ranking is the leaderboard of one user category, ordered by Order.
type Ranking struct {
	CategoryID string
	Entries    []RankEntry
}

// UserRankData is the in-memory container for the rank category.
type UserRankData struct {
	CheckSum string
	Data     []Ranking
}

// UserCategory is a competition category the user participates in
// (e.g. a town or an age group).
type UserCategory struct {
	ID       string
	Name     string
	Detail   string
	IsPublic bool
}

// UserCategoryData holds the user's categories and which one is primary.
type UserCategoryData struct {
	MainCategoryID string
	Data           []UserCategory
}
