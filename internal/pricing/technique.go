package pricing

// Technique identifies a decoration method. The set is closed: adding a
// technique means adding a PriceTable variant and a TechniqueOptions type,
// not a generic option bag.
type Technique string

const (
	TechniqueScreenPrint Technique = "screen_print"
	TechniqueEmbroidery  Technique = "embroidery"
	TechniqueDTF         Technique = "dtf"
)

// Techniques lists every supported technique in display order.
var Techniques = []Technique{TechniqueScreenPrint, TechniqueEmbroidery, TechniqueDTF}

// Valid reports whether t is one of the supported techniques.
func (t Technique) Valid() bool {
	switch t {
	case TechniqueScreenPrint, TechniqueEmbroidery, TechniqueDTF:
		return true
	}
	return false
}

// SubstrateTone selects the light or dark price matrix for screen printing.
type SubstrateTone string

const (
	ToneLight SubstrateTone = "light"
	ToneDark  SubstrateTone = "dark"
)

// EmbroiderySize selects the small or large embroidery price matrix.
type EmbroiderySize string

const (
	EmbroiderySmall EmbroiderySize = "small"
	EmbroideryLarge EmbroiderySize = "large"
)

// TechniqueOptions carries the axis values and selected add-ons for one
// technique. Each technique has its own concrete type; the calculator
// dispatches on the concrete type instead of probing dynamic fields.
type TechniqueOptions interface {
	Technique() Technique
}

// ScreenPrintOptions are the per-item inputs for screen printing.
type ScreenPrintOptions struct {
	ColorCount        int           `json:"color_count"`
	Tone              SubstrateTone `json:"tone"`
	SelectedOptionIDs []string      `json:"selected_option_ids,omitempty"`
}

func (ScreenPrintOptions) Technique() Technique { return TechniqueScreenPrint }

// EmbroideryOptions are the per-item inputs for embroidery.
type EmbroideryOptions struct {
	StitchCount int            `json:"stitch_count"`
	Size        EmbroiderySize `json:"size"`
}

func (EmbroideryOptions) Technique() Technique { return TechniqueEmbroidery }

// DTFOptions are the per-item inputs for direct-to-film transfer.
type DTFOptions struct {
	Dimension string `json:"dimension"`
}

func (DTFOptions) Technique() Technique { return TechniqueDTF }

// QuoteItem is one priced line of a quote. It is immutable once handed to
// the engine; one PriceResult is produced per item.
type QuoteItem struct {
	Options         TechniqueOptions
	TotalQuantity   int
	ProductName     string
	ProductCategory string
	Vectorize       bool
}

// StandardLeadDays is the reference lead time. Any resolved lead time below
// it triggers the express surcharge.
const StandardLeadDays = 10

// Delay describes the requested turnaround.
type Delay struct {
	WorkingDays int  `json:"working_days"`
	IsExpress   bool `json:"is_express"`
	ExpressDays int  `json:"express_days,omitempty"`
}

// ResolvedDays returns the effective lead time in working days. A zero
// value Delay means the standard lead time.
func (d Delay) ResolvedDays() int {
	if d.IsExpress && d.ExpressDays > 0 {
		return d.ExpressDays
	}
	if d.WorkingDays > 0 {
		return d.WorkingDays
	}
	return StandardLeadDays
}

// ExpressSurchargePercent returns the surcharge percentage for the delay:
// 10% per working day saved under the standard lead time, linear and
// uncapped. At or above the standard lead time it is 0.
func (d Delay) ExpressSurchargePercent() float64 {
	days := d.ResolvedDays()
	if days >= StandardLeadDays {
		return 0
	}
	return 10 * float64(StandardLeadDays-days)
}
