package models

import "time"

// pointTypeNoCountFlag is bit 11 of the wire-format point type. When set,
// the point is displayed but does not count toward totals.
const pointTypeNoCountFlag = 0x800

// DecodePointType splits the raw wire-format type field into the point-type
// classification and the "counts toward total" flag.
func DecodePointType(raw int) (pointType int, counts bool) {
	return raw &^ pointTypeNoCountFlag, raw&pointTypeNoCountFlag == 0
}

// EncodePointType is the inverse of DecodePointType.
func EncodePointType(pointType int, counts bool) int {
	if counts {
		return pointType
	}
	return pointType | pointTypeNoCountFlag
}

// Location is a geographic fix captured at scan time.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Accuracy  float64 `json:"acc"`
	Altitude  float64 `json:"alt"`
}

// UserPoint is one earned-point event. RecordKey is unique per scan
// instance: the same physical point scanned on different days yields
// distinct records sharing the point ID.
type UserPoint struct {
	ID             string
	RecordKey      string
	Timestamp      time.Time
	Name           string
	Value          int
	PointType      int
	Location       Location
	Source         CodeSource
	CategoryIDs    []string
	Duration       time.Duration
	DoesPointCount bool
}

// GenericPoint is a physical marker placed in the field, independent of any
// user.
type GenericPoint struct {
	ID          string
	Name        string
	Value       int
	PointType   int
	Location    Location
	CategoryIDs []string
	Active      bool
}

// UserPointData is the in-memory container for the user-points category.
// It is always replaced as a whole, payload together with its checksum, so
// readers never see new items under an old checksum.
type UserPointData struct {
	CheckSum string
	Data     []UserPoint
}

// GenericPointData is the in-memory container for the generic-points
// category.
type GenericPointData struct {
	CheckSum string
	Data     []GenericPoint
}
