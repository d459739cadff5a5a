// Package models contains the domain types of the Life is Skill client:
// synchronized data categories, earned and scanned points, rankings, and the
// local session record.
package models

// Category identifies one independently synchronized remote data set.
// The values double as URL path segments of the backend API.
type Category string

const (
	CategoryUserPoints     Category = "user-points"
	CategoryRank           Category = "rank"
	CategoryMessages       Category = "messages"
	CategoryEvents         Category = "events"
	CategoryGenericPoints  Category = "points"
	CategoryUserCategories Category = "user-categories"
)

// CodeSource tells how a point code entered the device.
type CodeSource string

const (
	SourceQR      CodeSource = "qr"
	SourceNFC     CodeSource = "nfc"
	SourceText    CodeSource = "text"
	SourceVirtual CodeSource = "virtual"
)
