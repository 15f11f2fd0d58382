package moderation

import "testing"

func TestContainsLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"http://example.com", true},
		{"see HTTPS://Example.com/path", true},
		{"www.example.org", true},
		{"join t.me/channel", true},
		{"telegram.me/joinchat/xyz", true},
		{"visit shop.xyz today", true},
		{"login.in", true},
		{"пример.com", true},
		{"visit пример.com now", true},
		{"зайди на пример.com", true},
		{"उदाहरण.in पर जाएं", true},
		{"join naïve.io", true},
		{"(пример.org)", true},
		{"пример.comтекст", false},
		{"awww.example", false},
		{"hello world", false},
		{"version 1.2.3", false},
		{"notes.txt", false},
		{"```https://example.com```", false},
		{"```\nwww.example.com\n``` and more text", false},
		{"```code``` then http://example.com", true},
	}
	for _, tt := range tests {
		if got := ContainsLink(tt.text); got != tt.want {
			t.Fatalf("ContainsLink(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestStripCodeBlocks(t *testing.T) {
	t.Parallel()
	got := StripCodeBlocks("a ```x\ny``` b ```z``` c")
	if got != "a  b  c" {
		t.Fatalf("unexpected result: %q", got)
	}
}
