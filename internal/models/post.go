package models

import "time"

// Post types
const (
	PostTypePhoto = "photo"
	PostTypeVideo = "video"
	PostTypeText  = "text"
)

// Post categories
const (
	CategoryDaily     = "daily"
	CategoryMilestone = "milestone"
	CategoryHoliday   = "holiday"
	CategorySchool    = "school"
	CategoryFamily    = "family"
	CategoryOther     = "other"
)

// Post is a single album entry: a photo (or photo set), a video or a text note
type Post struct {
	ID        string     `json:"id"`
	FamilyID  string     `json:"-"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	MediaURL  string     `json:"media_url,omitempty"`
	PhotoURLs []string   `json:"photo_urls,omitempty"`
	CoverURL  string     `json:"cover_url,omitempty"`
	Hashtags  []string   `json:"hashtags"`
	Category  string     `json:"category"`
	TakenOn   *time.Time `json:"taken_on,omitempty"`
	ChildIDs  []string   `json:"child_ids"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	Hashtag  string
	Category string
	ChildID  string
	Date     *time.Time
	Limit    int
	Offset   int
}

// CalendarDay is the number of posts taken on one calendar day
type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HashtagCount is a hashtag with the number of posts carrying it
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
