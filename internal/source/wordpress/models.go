package wordpress

import (
	"bytes"
	"encoding/json"
)

type post struct {
	ID         int64      `json:"id"`
	Date       string     `json:"date"`
	DateGMT    string     `json:"date_gmt"`
	Slug       string     `json:"slug"`
	Link       string     `json:"link"`
	Title      rendered   `json:"title"`
	Content    rendered   `json:"content"`
	Excerpt    *rendered  `json:"excerpt"`
	Author     int64      `json:"author"`
	Tags       []int64    `json:"tags"`
	Categories []int64    `json:"categories"`
	Yoast      *yoastHead `json:"yoast_head_json"`
	Embedded   *embedded  `json:"_embedded"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type yoastHead struct {
	Author  string       `json:"author"`
	OGImage []yoastImage `json:"og_image"`
	Schema  *yoastSchema `json:"schema"`
}

type yoastImage struct {
	URL string `json:"url"`
}

type yoastSchema struct {
	Graph []graphNode `json:"@graph"`
}

type graphNode struct {
	Type           stringList `json:"@type"`
	Keywords       stringList `json:"keywords"`
	ArticleSection stringList `json:"articleSection"`
}

type embedded struct {
	Author        []user   `json:"author"`
	FeaturedMedia []media  `json:"wp:featuredmedia"`
	Terms         [][]term `json:"wp:term"`
}

type media struct {
	SourceURL    string       `json:"source_url"`
	MediaDetails mediaDetails `json:"media_details"`
}

type mediaDetails struct {
	Sizes map[string]mediaSize `json:"sizes"`
}

type mediaSize struct {
	SourceURL string `json:"source_url"`
}

type term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}

type user struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	AvatarURLs map[string]string `json:"avatar_urls"`
}

type named struct {
	Name string `json:"name"`
}

// stringList accepts a JSON string or an array of strings. Yoast emits both
// shapes for @type, keywords and articleSection.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = stringList{v}
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		*s = nil
		return nil
	}
	out := make(stringList, 0, len(items))
	for _, it := range items {
		if v, ok := it.(string); ok {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

func (s stringList) contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}
