package migrate

import (
	"github.com/goliatone/go-wpmigrate/internal/images"
	"github.com/goliatone/go-wpmigrate/internal/normalize"
	"github.com/goliatone/go-wpmigrate/internal/posts"
	"github.com/goliatone/go-wpmigrate/internal/shortcode"
)

// PostImages lists the image URLs of one post body in document order,
// duplicates included. Content is normalized and captions resolved first so
// the URLs match the ones the converter looks up.
func PostImages(content string) []string {
	return images.URLs(shortcode.Resolve(normalize.Markup(content)))
}

// CollectImageURLs returns every distinct image URL across items in first
// seen order.
func CollectImageURLs(items []posts.RawPost) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, post := range items {
		for _, url := range PostImages(post.Content) {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			out = append(out, url)
		}
	}
	return out
}
