package timestamp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"01:05:03", 3903},
		{"00:00:05", 5},
		{"05:30", 330},
		{"42", 42},
		{"00:00:05.579", 5},
		{"00:00:05,579", 5},
		{"", 0},
		{"garbage", 0},
		{"1:xx:30", 3630}, // unparsable component counts as zero
		{" 00:01:00 ", 60},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSeconds(tt.in))
		})
	}
}

func TestToHMS(t *testing.T) {
	assert.Equal(t, "01:05:03", ToHMS(3903))
	assert.Equal(t, "00:00:00", ToHMS(0))
	assert.Equal(t, "00:00:00", ToHMS(-5))
	assert.Equal(t, "10:00:00", ToHMS(36000))
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 59, 60, 61, 3599, 3600, 3903, 86399, 123456} {
		assert.Equal(t, n, ToSeconds(ToHMS(n)), "n=%d", n)
	}
}

func TestBuildDeepLink_EmptyInputs(t *testing.T) {
	assert.Empty(t, BuildDeepLink("", "00:01:00"))
	assert.Empty(t, BuildDeepLink("https://example.com/v", ""))
	assert.Empty(t, BuildDeepLink("", ""))
}

func TestBuildDeepLink_SharePointQueryParam(t *testing.T) {
	tests := []struct {
		url  string
		ts   string
		want string
	}{
		{
			"https://contoso.sharepoint.com/sites/eng/recording.mp4",
			"00:01:05",
			"https://contoso.sharepoint.com/sites/eng/recording.mp4?t=65",
		},
		{
			"https://contoso.sharepoint.com/stream.aspx?id=abc",
			"01:00:00",
			"https://contoso.sharepoint.com/stream.aspx?id=abc&t=3600",
		},
		{
			"https://onedrive.live.com/view?cid=1",
			"00:00:30",
			"https://onedrive.live.com/view?cid=1&t=30",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildDeepLink(tt.url, tt.ts))
	}
}

func TestBuildDeepLink_FragmentForOtherHosts(t *testing.T) {
	got := BuildDeepLink("https://video.example.com/rec", "01:05:03")
	assert.Equal(t, "https://video.example.com/rec#t=1h5m3s", got)

	got = BuildDeepLink("https://video.example.com/rec", "00:00:09")
	assert.Equal(t, "https://video.example.com/rec#t=0h0m9s", got)
}

func TestBuildDeepLink_NeverEmptyForValidInputs(t *testing.T) {
	for i, u := range []string{
		"https://contoso.sharepoint.com/x",
		"https://1drv.ms/v/abc",
		"https://youtu.be/xyz",
	} {
		link := BuildDeepLink(u, "00:10:00")
		assert.NotEmpty(t, link, fmt.Sprintf("case %d", i))
		assert.Contains(t, link, "t=")
	}
}

func TestIsQueryParamHost_NoFalsePositives(t *testing.T) {
	assert.False(t, isQueryParamHost("https://notsharepoint.example.com/x"))
	assert.False(t, isQueryParamHost("https://evilsharepoint.com.attacker.net/x"))
	assert.True(t, isQueryParamHost("https://tenant.sharepoint.com/x"))
}
