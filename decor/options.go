package decor

import "time"

// Options carries the literals the decorations depend on. The zero value is
// not useful; start from DefaultOptions.
type Options struct {
	MacrosTitle       string
	MacrosNavText     string
	TypedefsTitle     string
	TypeFunctionsText string

	// RequireTypedefs restricts Type Functions removal to pages that also
	// carry a Typedefs section.
	RequireTypedefs bool

	BorderRight    string
	CornerRadius   string
	NotePadding    string
	ViewportOffset string
	FadeIn         time.Duration

	RelabelFrom string
	RelabelTo   string

	// Disabled lists step names that Run skips.
	Disabled []string
}

func DefaultOptions() Options {
	return Options{
		MacrosTitle:       MacrosTitle,
		MacrosNavText:     MacrosNavText,
		TypedefsTitle:     TypedefsTitle,
		TypeFunctionsText: TypeFunctionsText,
		BorderRight:       "1px solid",
		CornerRadius:      "7px",
		NotePadding:       "8px",
		ViewportOffset:    "174px",
		FadeIn:            250 * time.Millisecond,
		RelabelFrom:       "reflist",
		RelabelTo:         "todo",
	}
}

// withDefaults fills empty fields so a partially populated Options from a
// config file still behaves.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MacrosTitle == "" {
		o.MacrosTitle = def.MacrosTitle
	}
	if o.MacrosNavText == "" {
		o.MacrosNavText = def.MacrosNavText
	}
	if o.TypedefsTitle == "" {
		o.TypedefsTitle = def.TypedefsTitle
	}
	if o.TypeFunctionsText == "" {
		o.TypeFunctionsText = def.TypeFunctionsText
	}
	if o.BorderRight == "" {
		o.BorderRight = def.BorderRight
	}
	if o.CornerRadius == "" {
		o.CornerRadius = def.CornerRadius
	}
	if o.NotePadding == "" {
		o.NotePadding = def.NotePadding
	}
	if o.ViewportOffset == "" {
		o.ViewportOffset = def.ViewportOffset
	}
	if o.FadeIn <= 0 {
		o.FadeIn = def.FadeIn
	}
	if o.RelabelFrom == "" {
		o.RelabelFrom = def.RelabelFrom
	}
	if o.RelabelTo == "" {
		o.RelabelTo = def.RelabelTo
	}
	return o
}

func (o Options) disabled(name string) bool {
	for _, d := range o.Disabled {
		if d == name {
			return true
		}
	}
	return false
}
