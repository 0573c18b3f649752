package schema

// PlacesTable represents the 'neverbeen.places' table
type PlacesTable struct {
	Table        string
	PlaceID      string
	PosterID     string
	PlusCode     string
	FriendlyName string
	Country      string
	Description  string
	Rating       string
	IsVisible    string
}

// Places is the schema definition for neverbeen.places
var Places = PlacesTable{
	Table:        "neverbeen.places",
	PlaceID:      "placeid",
	PosterID:     "posterid",
	PlusCode:     "pluscode",
	FriendlyName: "friendlyname",
	Country:      "country",
	Description:  "description",
	Rating:       "rating",
	IsVisible:    "isvisible",
}

// Columns returns all standard column names
func (t PlacesTable) Columns() []string {
	return []string{
		t.PlaceID, t.PosterID, t.PlusCode, t.FriendlyName,
		t.Country, t.Description, t.Rating, t.IsVisible,
	}
}

// RatingsTable represents the 'neverbeen.ratings' table
type RatingsTable struct {
	Table       string
	RatingID    string
	PlaceID     string
	Username    string
	RatingValue string
	CommentBody string
	TimePosted  string
	TimeEdited  string
}

// Ratings is the schema definition for neverbeen.ratings
var Ratings = RatingsTable{
	Table:       "neverbeen.ratings",
	RatingID:    "ratingid",
	PlaceID:     "placeid",
	Username:    "username",
	RatingValue: "ratingvalue",
	CommentBody: "commentbody",
	TimePosted:  "timeposted",
	TimeEdited:  "timeedited",
}

// Columns returns all standard column names
func (t RatingsTable) Columns() []string {
	return []string{
		t.RatingID, t.PlaceID, t.Username, t.RatingValue,
		t.CommentBody, t.TimePosted, t.TimeEdited,
	}
}

// ThumbnailsTable represents the 'neverbeen.thumbnails' table
type ThumbnailsTable struct {
	Table       string
	ImageID     string
	Uploader    string
	PlaceID     string
	InternalURL string
	ExternalURL string
	Verified    string
	UploadDate  string
}

// Thumbnails is the schema definition for neverbeen.thumbnails
var Thumbnails = ThumbnailsTable{
	Table:       "neverbeen.thumbnails",
	ImageID:     "imageid",
	Uploader:    "uploader",
	PlaceID:     "placeid",
	InternalURL: "internalurl",
	ExternalURL: "externalurl",
	Verified:    "verified",
	UploadDate:  "uploaddate",
}

// Columns returns all standard column names
func (t ThumbnailsTable) Columns() []string {
	return []string{
		t.ImageID, t.Uploader, t.PlaceID, t.InternalURL,
		t.ExternalURL, t.Verified, t.UploadDate,
	}
}
