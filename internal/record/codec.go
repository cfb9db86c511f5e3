package record

import (
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
)

// Document field names of a daily record.
const (
	fieldID         = "id"
	fieldResidentID = "residentId"
	fieldDate       = "date"
	fieldCreatedAt  = "createdAt"
	fieldUpdatedAt  = "updatedAt"
)

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func entryBase(id, recordedBy string, recordedAt time.Time) map[string]any {
	return map[string]any{
		"id":         id,
		"recordedBy": recordedBy,
		"recordedAt": recordedAt.UTC(),
	}
}

func encodeVitals(list []Vital) []any {
	out := make([]any, len(list))
	for i, v := range list {
		m := entryBase(v.ID, v.RecordedBy, v.RecordedAt)
		m["time"] = v.Time
		if v.Temperature != nil {
			m["temperature"] = *v.Temperature
		}
		putInt(m, "bloodPressureHigh", v.BloodPressureHigh)
		putInt(m, "bloodPressureLow", v.BloodPressureLow)
		putInt(m, "pulse", v.Pulse)
		putInt(m, "spO2", v.SpO2)
		putString(m, "note", v.Note)
		out[i] = m
	}
	return out
}

func encodeExcretions(list []Excretion) []any {
	out := make([]any, len(list))
	for i, e := range list {
		m := entryBase(e.ID, e.RecordedBy, e.RecordedAt)
		m["time"] = e.Time
		m["type"] = string(e.Type)
		putString(m, "urineAmount", string(e.UrineAmount))
		putString(m, "fecesAmount", string(e.FecesAmount))
		putString(m, "fecesCondition", string(e.FecesCondition))
		m["hasIncontinence"] = e.HasIncontinence
		putString(m, "note", e.Note)
		out[i] = m
	}
	return out
}

func encodeMeals(list []Meal) []any {
	out := make([]any, len(list))
	for i, e := range list {
		m := entryBase(e.ID, e.RecordedBy, e.RecordedAt)
		m["mealType"] = string(e.MealType)
		m["mainDishAmount"] = e.MainDishAmount
		m["sideDishAmount"] = e.SideDishAmount
		putInt(m, "soupAmount", e.SoupAmount)
		putString(m, "note", e.Note)
		out[i] = m
	}
	return out
}

func encodeHydrations(list []Hydration) []any {
	out := make([]any, len(list))
	for i, e := range list {
		m := entryBase(e.ID, e.RecordedBy, e.RecordedAt)
		m["time"] = e.Time
		m["amount"] = e.Amount
		putString(m, "drinkType", e.DrinkType)
		putString(m, "note", e.Note)
		out[i] = m
	}
	return out
}

func decodeVitals(items []docstore.Document) []Vital {
	out := make([]Vital, 0, len(items))
	for _, d := range items {
		out = append(out, Vital{
			ID:                docstore.String(d, "id"),
			Time:              docstore.String(d, "time"),
			Temperature:       docstore.OptionalFloat(d, "temperature"),
			BloodPressureHigh: docstore.OptionalInt(d, "bloodPressureHigh"),
			BloodPressureLow:  docstore.OptionalInt(d, "bloodPressureLow"),
			Pulse:             docstore.OptionalInt(d, "pulse"),
			SpO2:              docstore.OptionalInt(d, "spO2"),
			Note:              docstore.String(d, "note"),
			RecordedBy:        docstore.String(d, "recordedBy"),
			RecordedAt:        docstore.Time(d, "recordedAt"),
		})
	}
	return out
}

func decodeExcretions(items []docstore.Document) []Excretion {
	out := make([]Excretion, 0, len(items))
	for _, d := range items {
		out = append(out, Excretion{
			ID:              docstore.String(d, "id"),
			Time:            docstore.String(d, "time"),
			Type:            ExcretionType(docstore.String(d, "type")),
			UrineAmount:     Amount(docstore.String(d, "urineAmount")),
			FecesAmount:     Amount(docstore.String(d, "fecesAmount")),
			FecesCondition:  FecesCondition(docstore.String(d, "fecesCondition")),
			HasIncontinence: docstore.Bool(d, "hasIncontinence"),
			Note:            docstore.String(d, "note"),
			RecordedBy:      docstore.String(d, "recordedBy"),
			RecordedAt:      docstore.Time(d, "recordedAt"),
		})
	}
	return out
}

func decodeMeals(items []docstore.Document) []Meal {
	out := make([]Meal, 0, len(items))
	for _, d := range items {
		out = append(out, Meal{
			ID:             docstore.String(d, "id"),
			MealType:       MealType(docstore.String(d, "mealType")),
			MainDishAmount: docstore.Int(d, "mainDishAmount"),
			SideDishAmount: docstore.Int(d, "sideDishAmount"),
			SoupAmount:     docstore.OptionalInt(d, "soupAmount"),
			Note:           docstore.String(d, "note"),
			RecordedBy:     docstore.String(d, "recordedBy"),
			RecordedAt:     docstore.Time(d, "recordedAt"),
		})
	}
	return out
}

func decodeHydrations(items []docstore.Document) []Hydration {
	out := make([]Hydration, 0, len(items))
	for _, d := range items {
		out = append(out, Hydration{
			ID:         docstore.String(d, "id"),
			Time:       docstore.String(d, "time"),
			Amount:     docstore.Int(d, "amount"),
			DrinkType:  docstore.String(d, "drinkType"),
			Note:       docstore.String(d, "note"),
			RecordedBy: docstore.String(d, "recordedBy"),
			RecordedAt: docstore.Time(d, "recordedAt"),
		})
	}
	return out
}

// patchFields turns a patch into the top-level fields to write. Scalar
// overrides go first so a list field always wins over a same-named scalar.
func patchFields(p Patch) docstore.Document {
	fields := docstore.Document{}
	for k, v := range p.Fields {
		fields[k] = v
	}
	if p.Vitals != nil {
		fields[string(KindVitals)] = encodeVitals(*p.Vitals)
	}
	if p.Excretions != nil {
		fields[string(KindExcretions)] = encodeExcretions(*p.Excretions)
	}
	if p.Meals != nil {
		fields[string(KindMeals)] = encodeMeals(*p.Meals)
	}
	if p.Hydrations != nil {
		fields[string(KindHydrations)] = encodeHydrations(*p.Hydrations)
	}
	return fields
}

func decodeRecord(id string, doc docstore.Document) *DailyRecord {
	return &DailyRecord{
		ID:         id,
		ResidentID: docstore.String(doc, fieldResidentID),
		Date:       docstore.String(doc, fieldDate),
		Vitals:     decodeVitals(docstore.List(doc, string(KindVitals))),
		Excretions: decodeExcretions(docstore.List(doc, string(KindExcretions))),
		Meals:      decodeMeals(docstore.List(doc, string(KindMeals))),
		Hydrations: decodeHydrations(docstore.List(doc, string(KindHydrations))),
		CreatedAt:  docstore.Time(doc, fieldCreatedAt),
		UpdatedAt:  docstore.Time(doc, fieldUpdatedAt),
	}
}

// ToPatch returns a patch that replaces all four lists with the record's.
func (r *DailyRecord) ToPatch() Patch {
	vitals, excretions, meals, hydrations := r.Vitals, r.Excretions, r.Meals, r.Hydrations
	return Patch{Vitals: &vitals, Excretions: &excretions, Meals: &meals, Hydrations: &hydrations}
}
