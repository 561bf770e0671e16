package sentiment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch dispatches one independent call per text and waits for all of
// them. The batch is all-or-nothing: the first failure is returned and the
// partial results are discarded. In-flight siblings are not canceled, which
// is why a plain group is used instead of errgroup.WithContext.
func AnalyzeBatch(ctx context.Context, adapter Adapter, texts []string) ([]Result, error) {
	results := make([]Result, len(texts))
	var g errgroup.Group
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			res, err := adapter.Analyze(ctx, text)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
