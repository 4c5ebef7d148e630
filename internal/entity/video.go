package entity

// Video is the metadata for one uploaded blob. StorageKey is the exact
// object key the blob was written under and never leaves the server.
type Video struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string `gorm:"not null" json:"filename"`
	URL        string `gorm:"column:url;not null" json:"url"`
	StorageKey string `gorm:"not null;default:''" json:"-"`
}

func (Video) TableName() string {
	return "videos"
}
