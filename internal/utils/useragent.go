package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds the parsed pieces of a User-Agent string that get attached
// to clickstream events.
type DeviceInfo struct {
	DeviceType string `json:"deviceType"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browserVer"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
	IsBot      bool   `json:"isBot"`
	Raw        string `json:"raw"`
}

// ParseUserAgent extracts device information from a User-Agent string
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		Raw:        userAgent,
		IsBot:      parser.Bot(),
		OS:         osName(parser),
		Browser:    browserName(parser),
		BrowserVer: browserVersion(parser),
		Platform:   platform(parser),
	}
	info.DeviceType = deviceType(parser)

	return info
}

func deviceType(parser *ua.UserAgent) string {
	if parser.Mobile() {
		if isTablet(parser.UA()) {
			return "tablet"
		}
		return "mobile"
	}
	return "desktop"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)

	indicators := []string{
		"ipad", "tablet", "kindle", "playbook",
		"nexus 7", "nexus 9", "nexus 10",
		"sm-t", // Samsung tablets
		"tab",
	}

	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	return false
}

func osName(parser *ua.UserAgent) string {
	osInfo := parser.OSInfo()
	if osInfo.Name == "" {
		return "Unknown"
	}
	if osInfo.Version != "" {
		return osInfo.Name + " " + osInfo.Version
	}
	return osInfo.Name
}

func browserName(parser *ua.UserAgent) string {
	name, _ := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	return name
}

func browserVersion(parser *ua.UserAgent) string {
	_, version := parser.Browser()
	return version
}

func platform(parser *ua.UserAgent) string {
	osName := strings.ToLower(parser.OSInfo().Name)

	known := map[string]string{
		"android":   "android",
		"ios":       "ios",
		"iphone os": "ios",
		"windows":   "windows",
		"mac os x":  "mac",
		"macos":     "mac",
		"linux":     "linux",
		"ubuntu":    "linux",
		"chrome os": "chromeos",
	}

	for key, name := range known {
		if strings.Contains(osName, key) {
			return name
		}
	}

	return "unknown"
}
