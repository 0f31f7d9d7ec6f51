package activities

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/yourorg/image-variants/internal/config"
	znmetrics "github.com/yourorg/image-variants/internal/metrics"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/variant"
)

// Cascade deletes the derived objects of src. It lists the label folders
// directly under the source's namespace and removes, page by page, every
// object under them (or, with the "source" scope, only src's own variant in
// each folder). It returns the number of keys deleted, including on error.
func (a *Activities) Cascade(ctx context.Context, src variant.Source) (int, error) {
	ns := src.Namespace() + "/"
	log := a.log.With(zap.String("source_key", src.Key), zap.String("namespace", ns))

	folders, err := a.labelFolders(ctx, ns)
	if err != nil {
		log.Error("listing label folders failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %s: %w", variant.ErrListFailed, ns, err)
	}

	deleted := 0
	for _, folder := range folders {
		in := storage.ListInput{Prefix: folder, MaxKeys: a.cfg.ListPageSize}
		var match func(string) bool
		if a.cfg.CascadeScope == config.ScopeSource {
			target := folder + src.Basename()
			in.Prefix = target
			match = func(k string) bool { return k == target }
		}

		var delErr error
		err := storage.Walk(ctx, a.store, in, func(page storage.ListPage) error {
			keys := page.Keys
			if match != nil {
				keys = filter(keys, match)
			}
			for len(keys) > 0 {
				n := min(len(keys), storage.MaxDeleteBatch)
				if err := a.store.Delete(ctx, keys[:n]); err != nil {
					delErr = err
					return err
				}
				deleted += n
				znmetrics.CascadeDeleted.Add(float64(n))
				keys = keys[n:]
			}
			return nil
		})
		switch {
		case delErr != nil:
			log.Error("cascade delete failed", zap.String("folder", folder), zap.Int("deleted", deleted), zap.Error(delErr))
			return deleted, fmt.Errorf("%w: under %s (source %s, %d deleted so far): %w", variant.ErrDeleteFailed, folder, src.Key, deleted, delErr)
		case err != nil:
			log.Error("cascade listing failed", zap.String("folder", folder), zap.Int("deleted", deleted), zap.Error(err))
			return deleted, fmt.Errorf("%w: %s (source %s, %d deleted so far): %w", variant.ErrListFailed, folder, src.Key, deleted, err)
		}
	}

	log.Info("cascade complete", zap.Int("folders", len(folders)), zap.Int("deleted", deleted))
	return deleted, nil
}

// labelFolders returns the common prefixes directly under ns whose last
// segment is a resolution label.
func (a *Activities) labelFolders(ctx context.Context, ns string) ([]string, error) {
	var out []string
	in := storage.ListInput{Prefix: ns, Delimiter: "/", MaxKeys: a.cfg.ListPageSize}
	err := storage.Walk(ctx, a.store, in, func(page storage.ListPage) error {
		for _, p := range page.CommonPrefixes {
			if variant.IsLabel(path.Base(strings.TrimSuffix(p, "/"))) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func filter(keys []string, keep func(string) bool) []string {
	var out []string
	for _, k := range keys {
		if keep(k) {
			out = append(out, k)
		}
	}
	return out
}
