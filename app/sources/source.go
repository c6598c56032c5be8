package sources

import (
	"context"

	"github.com/typefeed/typefeed/app/news"
)

// Source is the single capability every upstream integration
// implements. Fetch never fails: transport and parse errors are
// handled inside the source and surface as an empty result, so one
// dead upstream cannot blank out a category.
type Source interface {
	Name() string
	Fetch(ctx context.Context, category news.Category) []news.RawArticle
}
