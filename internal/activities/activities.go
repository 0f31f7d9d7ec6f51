package activities

import (
	"go.uber.org/zap"

	"github.com/yourorg/image-variants/internal/codec"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/variant"
)

// Codec is the image codec capability.
type Codec interface {
	Resize(src []byte, width, height int) (codec.Result, error)
	DetectFormat(b []byte) string
}

type Config struct {
	Allowed variant.AllowedSet
	// CascadeScope is "namespace" or "source"; see config.ScopeNamespace.
	CascadeScope string
	ListPageSize int32
}

// Activities runs generation and deletion cascades against the store. The
// same methods serve inline HTTP invocations and Temporal activities.
type Activities struct {
	cfg   Config
	store storage.ObjectStore
	codec Codec
	log   *zap.Logger
}

// New builds Activities over store and c; a nil logger is replaced by a no-op one.
func New(cfg Config, store storage.ObjectStore, c Codec, log *zap.Logger) *Activities {
	if log == nil {
		log = zap.NewNop()
	}
	return &Activities{cfg: cfg, store: store, codec: c, log: log}
}
