package readme

import "testing"

const badgeURL = "https://img.shields.io/endpoint?url=https://raw.githubusercontent.com/acme/widget/refs/heads/badges/badges/demo.json"

func TestImages(t *testing.T) {
	content := []byte(`# Widget

[![build](https://ci.example.com/badge.svg)](https://ci.example.com/acme/widget)
![demo](` + badgeURL + `)

<p><img src="https://example.com/logo.png" alt="logo"></p>
`)
	images := Images(content)
	if len(images) != 3 {
		t.Fatalf("got %d images: %+v", len(images), images)
	}
	if images[0].AltText != "build" || images[0].TargetURL != "https://ci.example.com/acme/widget" {
		t.Errorf("linked image = %+v", images[0])
	}
	if images[1].ImageURL != badgeURL || images[1].TargetURL != "" {
		t.Errorf("bare image = %+v", images[1])
	}
	if images[2].ImageURL != "https://example.com/logo.png" || images[2].AltText != "logo" {
		t.Errorf("html image = %+v", images[2])
	}
}

func TestHasImage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"markdown", "![demo](" + badgeURL + ")", true},
		{"linked", "[![demo](" + badgeURL + ")](https://github.com/acme/widget)", true},
		{"html", `<img src="` + badgeURL + `">`, true},
		{"escaped query", "![demo](https://img.shields.io/endpoint?url=https%3A%2F%2Fraw.githubusercontent.com%2Facme%2Fwidget%2Frefs%2Fheads%2Fbadges%2Fbadges%2Fdemo.json)", true},
		{"other badge", "![x](https://img.shields.io/badge/x-y-blue)", false},
		{"in code span", "`" + badgeURL + "`", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasImage([]byte(tt.content), badgeURL); got != tt.want {
				t.Errorf("HasImage = %v, want %v", got, tt.want)
			}
		})
	}
}
