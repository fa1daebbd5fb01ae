// Package types provides common type definitions for the tapcard system.
package types

// ScanMethod represents how a connection was initiated
type ScanMethod string

const (
	// ScanMethodNFC represents a connection made by tapping an NFC card
	ScanMethodNFC ScanMethod = "nfc"
	// ScanMethodQR represents a connection made by scanning a QR code
	ScanMethodQR ScanMethod = "qr"
	// ScanMethodLink represents a connection made through a shared link
	ScanMethodLink ScanMethod = "link"
)

// ValidScanMethod reports whether m is one of the supported scan methods.
func ValidScanMethod(m ScanMethod) bool {
	switch m {
	case ScanMethodNFC, ScanMethodQR, ScanMethodLink:
		return true
	default:
		return false
	}
}

// SocialPlatform represents a supported social link platform
type SocialPlatform string

const (
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformGitHub    SocialPlatform = "github"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformWhatsApp  SocialPlatform = "whatsapp"
)

// SocialPlatforms lists every platform a profile may link to.
var SocialPlatforms = []SocialPlatform{
	PlatformLinkedIn,
	PlatformGitHub,
	PlatformTwitter,
	PlatformInstagram,
	PlatformWhatsApp,
}

// ValidSocialPlatform reports whether p is a supported platform key.
func ValidSocialPlatform(p SocialPlatform) bool {
	for _, known := range SocialPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// ServiceError represents a structured error raised by the service layer
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ViewStats holds time-windowed view counts for a profile.
// The windows are nested: total >= week >= today.
type ViewStats struct {
	TotalViews int64 `json:"totalViews"`
	TodayViews int64 `json:"todayViews"`
	WeekViews  int64 `json:"weekViews"`
}

// ConnectionStats holds aggregate counts over a user's outgoing connections.
type ConnectionStats struct {
	Total     int64 `json:"total"`
	ThisWeek  int64 `json:"thisWeek"`
	Favorites int64 `json:"favorites"`
}

// ProfessionCount is one bucket of the viewer profession breakdown.
type ProfessionCount struct {
	Profession string `json:"profession"`
	Count      int64  `json:"count"`
}
