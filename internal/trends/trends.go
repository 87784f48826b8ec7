// Package trends supplies topics for production cycles, from the Google
// Trends feed when reachable and from a static per-category table otherwise.
package trends

// Category tags a topic with one of the content verticals the channel covers.
type Category string

const (
	CategoryTechnology Category = "technology"
	CategoryScience    Category = "science"
	CategoryHistory    Category = "history"
	CategoryNature     Category = "nature"
	CategoryFinance    Category = "finance"
)

// Topic is an opaque display string plus its category. It lives for one
// production cycle; only the dedup store remembers it afterwards.
type Topic struct {
	Title    string
	Category Category
}
