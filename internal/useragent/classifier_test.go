package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1"
	uaSafariIPad    = "Mozilla/5.0 (iPad; CPU OS 14_7_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
	uaGooglebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	uaCurl          = "curl/8.4.0"
	uaAndroidTV     = "Mozilla/5.0 (Linux; Android 9; BRAVIA 4K GB) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 Mobile Safari/537.36 OPR/46.0.2207.0 OMI/4.13.4.431 Model/Sony-BRAVIA-4K-GB Android TV"
	uaPixel         = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Mobile Safari/537.36"
)

func TestClassifyDeviceTypes(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		wantType string
		wantBot  bool
	}{
		{"windows desktop", uaChromeWindows, DeviceDesktop, false},
		{"iphone", uaSafariIPhone, DeviceMobile, false},
		{"ipad is tablet not mobile", uaSafariIPad, DeviceTablet, false},
		{"linux desktop", uaFirefoxLinux, DeviceDesktop, false},
		{"googlebot", uaGooglebot, DeviceBot, true},
		{"curl", uaCurl, DeviceBot, true},
		{"android tv beats android mobile", uaAndroidTV, DeviceTV, false},
		{"pixel phone", uaPixel, DeviceMobile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.ua)
			assert.Equal(t, tt.wantType, d.Type)
			assert.Equal(t, tt.wantBot, d.Bot)
		})
	}
}

func TestClassifyBrowserAndOS(t *testing.T) {
	d := Classify(uaChromeWindows)
	assert.Equal(t, "Chrome", d.Browser)
	assert.NotEmpty(t, d.BrowserVersion)
	assert.Contains(t, d.OS, "Windows")
	assert.NotEqual(t, "Unknown", d.Platform)
}

func TestClassifyBrand(t *testing.T) {
	tests := []struct {
		name      string
		ua        string
		wantBrand string
	}{
		{"apple iphone", uaSafariIPhone, "Apple"},
		{"google pixel", uaPixel, "Google"},
		{"no brand marker", uaFirefoxLinux, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantBrand, Classify(tt.ua).Brand)
		})
	}
}

func TestClassifyEmptyUserAgent(t *testing.T) {
	d := Classify("")
	assert.Equal(t, DeviceUnknown, d.Type)
	assert.Equal(t, "Unknown", d.Browser)
	assert.Equal(t, "Unknown", d.OS)
	assert.False(t, d.Bot)

	d = Classify("   ")
	assert.Equal(t, DeviceUnknown, d.Type)
}
