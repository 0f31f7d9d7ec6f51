package types

// Job actions carried by VariantJobParams.
const (
	ActionGenerate = "generate"
	ActionCascade  = "cascade"
)

// GenerateParams is the input of the GenerateVariant activity.
type GenerateParams struct {
	SourceKey  string `json:"source_key"`
	DerivedKey string `json:"derived_key"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// GenerateResult describes the written variant.
type GenerateResult struct {
	DerivedKey  string `json:"derived_key"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        int    `json:"size"`
}

// CascadeParams is the input of the CascadeDelete activity.
type CascadeParams struct {
	SourceKey string `json:"source_key"`
}

// CascadeResult reports how many derived objects were removed.
type CascadeResult struct {
	Deleted int `json:"deleted"`
}

// VariantJobParams is the input of VariantJobWorkflow: exactly one of
// Generate or Cascade is set, matching Action.
type VariantJobParams struct {
	Action   string          `json:"action"`
	Generate *GenerateParams `json:"generate,omitempty"`
	Cascade  *CascadeParams  `json:"cascade,omitempty"`
}

// VariantJobResult is the workflow result.
type VariantJobResult struct {
	Action   string          `json:"action"`
	Generate *GenerateResult `json:"generate,omitempty"`
	Cascade  *CascadeResult  `json:"cascade,omitempty"`
}
