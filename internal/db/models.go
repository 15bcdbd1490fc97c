package db

import (
	"time"

	"github.com/lib/pq"
)

// Article maps the articles table. URL carries the unique constraint that
// makes a conflicting insert a silent no-op.
type Article struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string         `gorm:"column:title;type:text"`
	Description string         `gorm:"column:description;type:text"`
	URL         string         `gorm:"column:url;type:text;not null;unique"`
	ImageURL    string         `gorm:"column:image_url;type:text"`
	PublishedAt *time.Time     `gorm:"column:published_at;type:timestamptz"`
	SourceName  string         `gorm:"column:source_name;type:text"`
	SourceURL   string         `gorm:"column:source_url;type:text"`
	Language    string         `gorm:"column:language;type:text"`
	FullContent string         `gorm:"column:full_content;type:text"`
	Authors     pq.StringArray `gorm:"column:authors;type:text[]"`
	Tickers     pq.StringArray `gorm:"column:tickers;type:text[]"`
	Topics      pq.StringArray `gorm:"column:topics;type:text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Article) TableName() string { return "articles" }

func autoMigrateModels() []any {
	return []any{
		&Article{},
	}
}
