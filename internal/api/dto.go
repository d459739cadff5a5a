package api

import (
	"time"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Wire DTOs. The backend wraps every successful response in
// {"data": <payload>}; errors carry {"error": <message>, "code": <code>}.

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	Nick             string `json:"nick"`
	MainCategory     string `json:"mainCategory"`
	Token            string `json:"token"`
	ActivationStatus string `json:"activationStatus"`
}

type checksumResponse struct {
	CheckSum string `json:"checkSum"`
}

type userPointDTO struct {
	ID         string   `json:"id"`
	RecordKey  string   `json:"recordKey"`
	Timestamp  int64    `json:"ts"`
	Name       string   `json:"name"`
	Value      int      `json:"value"`
	Type       int      `json:"type"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Acc        float64  `json:"acc"`
	Alt        float64  `json:"alt"`
	Source     string   `json:"source"`
	Categories []string `json:"categories"`
	Duration   int64    `json:"duration"`
}

type userPointsResponse struct {
	CheckSum string         `json:"checkSum"`
	Points   []userPointDTO `json:"points"`
}

type genericPointDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Value      int      `json:"value"`
	Type       int      `json:"type"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Acc        float64  `json:"acc"`
	Alt        float64  `json:"alt"`
	Categories []string `json:"categories"`
	Active     bool     `json:"active"`
}

type genericPointsResponse struct {
	CheckSum string            `json:"checkSum"`
	Points   []genericPointDTO `json:"points"`
}

type rankEntryDTO struct {
	UserID string `json:"userId"`
	Nick   string `json:"nick"`
	Points int    `json:"points"`
	Order  int    `json:"order"`
}

type rankingDTO struct {
	CategoryID string         `json:"categoryId"`
	Entries    []rankEntryDTO `json:"entries"`
}

type rankingsResponse struct {
	CheckSum string       `json:"checkSum"`
	Rankings []rankingDTO `json:"rankings"`
}

type userCategoryDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Detail   string `json:"detail"`
	IsPublic bool   `json:"isPublic"`
}

type userCategoriesResponse struct {
	MainCategory string            `json:"mainCategory"`
	Categories   []userCategoryDTO `json:"categories"`
}

type scanRequest struct {
	Code       string  `json:"code"`
	Source     string  `json:"source"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Acc        float64 `json:"acc"`
	Alt        float64 `json:"alt"`
	CapturedAt int64   `json:"capturedAt"`
}

func (d userPointDTO) toModel() models.UserPoint {
	pointType, counts := models.DecodePointType(d.Type)
	return models.UserPoint{
		ID:             d.ID,
		RecordKey:      d.RecordKey,
		Timestamp:      time.Unix(d.Timestamp, 0).UTC(),
		Name:           d.Name,
		Value:          d.Value,
		PointType:      pointType,
		Location:       models.Location{Latitude: d.Lat, Longitude: d.Lon, Accuracy: d.Acc, Altitude: d.Alt},
		Source:         models.CodeSource(d.Source),
		CategoryIDs:    d.Categories,
		Duration:       time.Duration(d.Duration) * time.Second,
		DoesPointCount: counts,
	}
}

func (d genericPointDTO) toModel() models.GenericPoint {
	pointType, _ := models.DecodePointType(d.Type)
	return models.GenericPoint{
		ID:          d.ID,
		Name:        d.Name,
		Value:       d.Value,
		PointType:   pointType,
		Location:    models.Location{Latitude: d.Lat, Longitude: d.Lon, Accuracy: d.Acc, Altitude: d.Alt},
		CategoryIDs: d.Categories,
		Active:      d.Active,
	}
}

func (r userPointsResponse) toModel() *models.UserPointData {
	data := &models.UserPointData{CheckSum: r.CheckSum}
	for _, d := range r.Points {
		data.Data = append(data.Data, d.toModel())
	}
	return data
}

func (r genericPointsResponse) toModel() *models.GenericPointData {
	data := &models.GenericPointData{CheckSum: r.CheckSum}
	for _, d := range r.Points {
		data.Data = append(data.Data, d.toModel())
	}
	return data
}

func (r rankingsResponse) toModel() *models.UserRankData {
	data := &models.UserRankData{CheckSum: r.CheckSum}
	for _, d := range r.Rankings {
		ranking := models.Ranking{CategoryID: d.CategoryID}
		for _, e := range d.Entries {
			ranking.Entries = append(ranking.Entries, models.RankEntry(e))
		}
		data.Data = append(data.Data, ranking)
	}
	return data
}

func (r userCategoriesResponse) toModel() *models.UserCategoryData {
	data := &models.UserCategoryData{MainCategoryID: r.MainCategory}
	for _, d := range r.Categories {
		data.Data = append(data.Data, models.UserCategory(d))
	}
	return data
}
