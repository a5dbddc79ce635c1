package checklist

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the evaluation of one instance in a batch.
type BatchResult struct {
	InstanceID           string            `json:"instanceId"`
	CompletionPercentage int               `json:"completionPercentage"`
	Errors               []ValidationError `json:"errors"`
	// Stale is set when the instance was filled against another template version.
	Stale bool `json:"stale,omitempty"`
}

// ValidateBatch validates instances against one indexed template with at
// most concurrency workers. Results keep the input order.
func ValidateBatch(ctx context.Context, idx *Index, mode CompletionMode, instances []Instance, concurrency int) ([]BatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]BatchResult, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range instances {
		inst := &instances[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data := ParseData(idx.Template, inst.Data)
			res := BatchResult{
				InstanceID:           inst.ID,
				CompletionPercentage: idx.Completion(mode, data),
				Errors:               idx.Validate(data),
				Stale:                inst.TemplateVersion != idx.Template.Version,
			}
			if res.Stale {
				zap.L().Debug("checklist: instance bound to other template version",
					zap.String("instance_id", inst.ID),
					zap.Int("instance_version", inst.TemplateVersion),
					zap.Int("template_version", idx.Template.Version),
				)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "checklist: validate batch")
	}
	return results, nil
}
