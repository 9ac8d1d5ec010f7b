package device

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		expected  Platform
	}{
		{
			"android phone",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			Android,
		},
		{
			"iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			IOS,
		},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148",
			IOS,
		},
		{
			"ipod",
			"Mozilla/5.0 (iPod touch; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15",
			IOS,
		},
		{
			"desktop chrome",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			Other,
		},
		{
			"desktop macos",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			Other,
		},
		{"empty string", "", Other},
		{"synthetic both markers, ios wins", "iPhone Android", IOS},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.userAgent); got != tc.expected {
				t.Fatalf("Classify(%q) = %q; want %q", tc.userAgent, got, tc.expected)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	ua := "Mozilla/5.0 (Linux; Android 14) Chrome/120.0"
	first := Classify(ua)
	for i := 0; i < 100; i++ {
		if got := Classify(ua); got != first {
			t.Fatalf("Classify is not deterministic: %q then %q", first, got)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		input    string
		expected Platform
		ok       bool
	}{
		{"android", Android, true},
		{"Android", Android, true},
		{"IOS", IOS, true},
		{"other", Other, true},
		{"windows", Other, false},
		{"", Other, false},
	}

	for _, tc := range cases {
		got, ok := Parse(tc.input)
		if got != tc.expected || ok != tc.ok {
			t.Fatalf("Parse(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}
