package assetcheck

import (
	"errors"
	"io"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/resolve"
	"golang.org/x/net/html"
)

// ExtractReferences returns the asset references found in an HTML document:
// img/source src and srcset, video poster, icon and image-preload links, and
// og:image/twitter:image meta tags. Document is left empty.
func ExtractReferences(r io.Reader) ([]Reference, error) {
	var refs []Reference
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return refs, nil
			}
			return nil, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			refs = append(refs, tagReferences(z.Token())...)
		}
	}
}

func tagReferences(tok html.Token) []Reference {
	attrs := make(map[string]string, len(tok.Attr))
	for _, a := range tok.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}
	var refs []Reference
	add := func(attr, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		refs = append(refs, Reference{Tag: tok.Data, Attr: attr, URL: value})
	}

	switch tok.Data {
	case "img", "source":
		add("src", attrs["src"])
		for _, c := range resolve.ParseSrcset(attrs["srcset"]) {
			add("srcset", c.URL)
		}
	case "video":
		add("poster", attrs["poster"])
	case "link":
		if isImageLink(attrs) {
			add("href", attrs["href"])
		}
	case "meta":
		switch strings.ToLower(attrs["property"] + attrs["name"]) {
		case "og:image", "twitter:image":
			add("content", attrs["content"])
		}
	}
	return refs
}

func isImageLink(attrs map[string]string) bool {
	for _, rel := range strings.Fields(strings.ToLower(attrs["rel"])) {
		switch rel {
		case "icon", "apple-touch-icon", "mask-icon":
			return true
		case "preload":
			if strings.EqualFold(attrs["as"], "image") {
				return true
			}
		}
	}
	return false
}
