package checklist

import (
	"agua24-backend/internal/model"
)

// Kind is the expected value type of a checklist item.
type Kind string

const (
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindText   Kind = "text"
)

// Item ids referenced by the analytics and export layers.
const (
	ItemPH          = "ph_level"
	ItemTDS         = "tds"
	ItemChlorine    = "chlorine"
	ItemHardness    = "hardness"
	ItemCashBox     = "cash_collected"
	ItemDescription = "description"
)

// Item describes one entry of a checklist definition.
type Item struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Section  string   `json:"section"`
	Unit     string   `json:"unit,omitempty"`
	RefRange string   `json:"refRange,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	// Private items (cash counts) never appear in condo-facing views or
	// exported documents handed to residents.
	Private bool `json:"private,omitempty"`
}

// Definition is a static, versioned checklist for one report type.
type Definition struct {
	Type    model.ReportType `json:"type"`
	Version int              `json:"version"`
	Items   []Item           `json:"items"`
}

// Item returns the definition entry for the given id.
func (d Definition) Item(id string) (Item, bool) {
	for _, it := range d.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// MissingRequired returns the ids of required items that have no usable
// value in the given answer list.
func (d Definition) MissingRequired(values model.ChecklistValues) []string {
	answered := make(map[string]model.AnswerValue, len(values))
	for _, v := range values {
		answered[v.ItemID] = v.Value
	}
	var missing []string
	for _, it := range d.Items {
		if !it.Required {
			continue
		}
		v, ok := answered[it.ID]
		if !ok || v.IsEmpty() {
			missing = append(missing, it.ID)
		}
	}
	return missing
}

func f(v float64) *float64 { return &v }

var waterQuality = []Item{
	{ID: ItemPH, Label: "Nivel de pH", Kind: KindNumber, Required: true, Section: "Calidad del agua", RefRange: "6.5 - 8.5", Min: f(0), Max: f(14)},
	{ID: ItemTDS, Label: "Sólidos disueltos (TDS)", Kind: KindNumber, Required: true, Section: "Calidad del agua", Unit: "ppm", RefRange: "50 - 300", Min: f(0), Max: f(2000)},
	{ID: ItemChlorine, Label: "Cloro residual", Kind: KindNumber, Required: true, Section: "Calidad del agua", Unit: "mg/L", RefRange: "0 - 0.5", Min: f(0), Max: f(5)},
	{ID: ItemHardness, Label: "Dureza", Kind: KindNumber, Required: true, Section: "Calidad del agua", Unit: "mg/L", RefRange: "0 - 200", Min: f(0), Max: f(1000)},
}

var definitions = map[model.ReportType]Definition{
	model.TypeWeekly: {
		Type:    model.TypeWeekly,
		Version: 2,
		Items: append(append([]Item{}, waterQuality...),
			Item{ID: "dispenser_clean", Label: "Dispensador limpio y desinfectado", Kind: KindBool, Required: true, Section: "Limpieza"},
			Item{ID: "area_clean", Label: "Área alrededor de la máquina limpia", Kind: KindBool, Required: true, Section: "Limpieza"},
			Item{ID: "leaks_checked", Label: "Sin fugas visibles", Kind: KindBool, Required: true, Section: "Inspección"},
			Item{ID: "notes", Label: "Observaciones", Kind: KindText, Required: false, Section: "Observaciones"},
		),
	},
	model.TypeMonthly: {
		Type:    model.TypeMonthly,
		Version: 2,
		Items: append(append([]Item{}, waterQuality...),
			Item{ID: "sediment_filter", Label: "Filtro de sedimentos revisado/cambiado", Kind: KindBool, Required: true, Section: "Filtros"},
			Item{ID: "carbon_filter", Label: "Filtro de carbón revisado/cambiado", Kind: KindBool, Required: true, Section: "Filtros"},
			Item{ID: "uv_lamp", Label: "Lámpara UV operativa", Kind: KindBool, Required: true, Section: "Inspección"},
			Item{ID: ItemCashBox, Label: "Efectivo recolectado", Kind: KindNumber, Required: true, Section: "Recaudación", Unit: "$", Private: true},
			Item{ID: "notes", Label: "Observaciones", Kind: KindText, Required: false, Section: "Observaciones"},
		),
	},
	model.TypeSpecial: {
		Type:    model.TypeSpecial,
		Version: 1,
		Items: []Item{
			{ID: ItemDescription, Label: "Descripción del incidente", Kind: KindText, Required: true, Section: "Incidente"},
			{ID: "resolved", Label: "Resuelto en sitio", Kind: KindBool, Required: true, Section: "Incidente"},
			{ID: "notes", Label: "Observaciones", Kind: KindText, Required: false, Section: "Observaciones"},
		},
	},
}

// For returns the checklist definition for a report type.
func For(t model.ReportType) (Definition, bool) {
	d, ok := definitions[t]
	return d, ok
}
