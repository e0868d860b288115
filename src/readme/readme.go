// Package readme inspects a repository README for embedded badge images.
package readme

import (
	"net/url"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Image is a badge-like image found in a README.
type Image struct {
	AltText   string
	ImageURL  string
	TargetURL string // empty when the image is not wrapped in a link
}

var htmlImage = regexp.MustCompile(`<img\s+[^>]*src="([^"]+)"(?:[^>]*\salt="([^"]*)")?[^>]*>`)

// Images returns every markdown and inline HTML image in content, in
// document order for markdown, followed by HTML images.
func Images(content []byte) []Image {
	var images []Image

	doc := goldmark.New().Parser().Parse(text.NewReader(content))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		found := Image{
			AltText:  string(img.Text(content)),
			ImageURL: string(img.Destination),
		}
		if link, ok := img.Parent().(*ast.Link); ok {
			found.TargetURL = string(link.Destination)
		}
		images = append(images, found)
		return ast.WalkSkipChildren, nil
	})

	for _, m := range htmlImage.FindAllSubmatch(content, -1) {
		images = append(images, Image{ImageURL: string(m[1]), AltText: string(m[2])})
	}
	return images
}

// HasImage reports whether content embeds imageURL. URLs are compared after
// parsing so that equivalent escapings match.
func HasImage(content []byte, imageURL string) bool {
	want := normalize(imageURL)
	for _, img := range Images(content) {
		if normalize(img.ImageURL) == want {
			return true
		}
	}
	return false
}

func normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if q, err := url.ParseQuery(u.RawQuery); err == nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
