// Package clicks turns raw redirect requests into enriched, durable click
// records and provides the queries analytics reads from.
package clicks

import "time"

// Click is one enriched redirect event. Every derived field holds either a
// real value or its sentinel; records are immutable once written.
type Click struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	LinkID    uint   `gorm:"index:idx_link_clicked;not null"`
	ShortCode string `gorm:"index;size:8;not null"`

	IPAddress string
	UserAgent string
	Referrer  string

	ReferrerDomain string `gorm:"index"`
	ReferrerType   string `gorm:"index"`
	VideoPlatform  string `gorm:"index"`
	VideoID        string

	DeviceType     string `gorm:"index"`
	DeviceBrand    string
	DeviceModel    string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Platform       string
	IsBot          bool

	CountryCode string `gorm:"index;size:2"`
	CountryName string
	Region      string
	City        string
	Latitude    float64
	Longitude   float64
	Timezone    string
	ISP         string
	GeoProvider string

	SessionID          string `gorm:"index;size:16"`
	IsReturningVisitor bool

	ClickedAt time.Time `gorm:"index:idx_link_clicked;not null"`
	CreatedAt time.Time
}
