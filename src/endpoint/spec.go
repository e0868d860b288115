package endpoint

// Template placeholder tokens.
const (
	TokenStyle        = "TPL_STYLE"
	TokenLabel        = "TPL_LABEL"
	TokenLabelColor   = "TPL_LCOLOR"
	TokenMessage      = "TPL_MESSAGE"
	TokenMessageColor = "TPL_COLOR"
)

// Spec describes the content and appearance of one endpoint badge.
type Spec struct {
	Style        string
	Label        string
	LabelColor   string
	Message      string
	MessageColor string
}

// SubstitutionMap maps template tokens to their replacement text.
type SubstitutionMap map[string]string

// Substitutions maps the spec onto the template tokens. No validation is
// done here.
func (s Spec) Substitutions() SubstitutionMap {
	return SubstitutionMap{
		TokenStyle:        s.Style,
		TokenLabel:        s.Label,
		TokenLabelColor:   s.LabelColor,
		TokenMessage:      s.Message,
		TokenMessageColor: s.MessageColor,
	}
}
