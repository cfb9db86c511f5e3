package seed

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
)

// idSpace namespaces generated entry ids so reseeding the same resident and
// date yields the same ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("care-record-service/seed"))

var (
	vitalTimes = []string{"06:00", "12:00", "18:00"}

	excretionTimes   = []string{"07:00", "10:00", "13:00", "16:00", "19:00"}
	excretionTypes   = []record.ExcretionType{record.ExcretionUrine, record.ExcretionUrine, record.ExcretionBoth, record.ExcretionUrine, record.ExcretionUrine}
	excretionAmounts = []record.Amount{record.AmountMedium, record.AmountSmall, record.AmountLarge, record.AmountMedium, record.AmountSmall}

	mealTypes   = []record.MealType{record.MealBreakfast, record.MealLunch, record.MealDinner}
	mealTimes   = []string{"08:00", "12:30", "18:30"}
	mealAmounts = []int{100, 80, 100}

	hydrationTimes   = []string{"09:00", "11:00", "14:00", "16:00", "20:00"}
	hydrationAmounts = []int{150, 100, 200, 100, 150}
	drinkTypes       = []string{"green tea", "green tea", "water", "coffee", "green tea"}
)

// GenerateRecords builds one full record per date. Output depends only on
// the resident id, the date and loc, so repeated calls agree.
func GenerateRecords(residentID string, dates []string, loc *time.Location) []record.DailyRecord {
	if loc == nil {
		loc = time.UTC
	}
	records := make([]record.DailyRecord, 0, len(dates))
	for _, date := range dates {
		g := newGenerator(residentID, date, loc)
		records = append(records, record.DailyRecord{
			ID:         date,
			ResidentID: residentID,
			Date:       date,
			Vitals:     g.vitals(),
			Excretions: g.excretions(),
			Meals:      g.meals(),
			Hydrations: g.hydrations(),
		})
	}
	return records
}

type generator struct {
	residentID string
	date       string
	loc        *time.Location
	rnd        *rand.Rand
}

func newGenerator(residentID, date string, loc *time.Location) *generator {
	h := fnv.New64a()
	h.Write([]byte(residentID))
	h.Write([]byte{0})
	h.Write([]byte(date))
	sum := h.Sum64()
	return &generator{
		residentID: residentID,
		date:       date,
		loc:        loc,
		rnd:        rand.New(rand.NewPCG(sum, sum>>1|1)),
	}
}

func (g *generator) id(kind record.Kind, i int) string {
	name := g.residentID + "/" + g.date + "/" + string(kind) + "/" + strconv.Itoa(i)
	return uuid.NewSHA1(idSpace, []byte(name)).String()
}

// at resolves an HH:mm slot on the generator's date in the facility zone.
func (g *generator) at(clock string) time.Time {
	t, err := time.ParseInLocation(record.DateLayout+" "+record.TimeLayout, g.date+" "+clock, g.loc)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (g *generator) between(lo, n int) *int {
	v := lo + g.rnd.IntN(n)
	return &v
}

func (g *generator) vitals() []record.Vital {
	out := make([]record.Vital, len(vitalTimes))
	for i, clock := range vitalTimes {
		temp := math.Round((36.0+g.rnd.Float64())*10) / 10
		out[i] = record.Vital{
			ID:                g.id(record.KindVitals, i),
			Time:              clock,
			Temperature:       &temp,
			BloodPressureHigh: g.between(110, 40),
			BloodPressureLow:  g.between(60, 30),
			Pulse:             g.between(60, 30),
			SpO2:              g.between(95, 5),
			RecordedBy:        auth.GuestUserID,
			RecordedAt:        g.at(clock),
		}
	}
	return out
}

func (g *generator) excretions() []record.Excretion {
	out := make([]record.Excretion, len(excretionTimes))
	for i, clock := range excretionTimes {
		e := record.Excretion{
			ID:          g.id(record.KindExcretions, i),
			Time:        clock,
			Type:        excretionTypes[i],
			UrineAmount: excretionAmounts[i],
			RecordedBy:  auth.GuestUserID,
			RecordedAt:  g.at(clock),
		}
		if e.Type == record.ExcretionBoth {
			e.FecesAmount = record.AmountMedium
			e.FecesCondition = record.FecesNormal
		}
		out[i] = e
	}
	return out
}

func (g *generator) meals() []record.Meal {
	out := make([]record.Meal, len(mealTypes))
	for i, mt := range mealTypes {
		soup := mealAmounts[i]
		out[i] = record.Meal{
			ID:             g.id(record.KindMeals, i),
			MealType:       mt,
			MainDishAmount: mealAmounts[i],
			SideDishAmount: mealAmounts[i] - 10,
			SoupAmount:     &soup,
			RecordedBy:     auth.GuestUserID,
			RecordedAt:     g.at(mealTimes[i]),
		}
	}
	return out
}

func (g *generator) hydrations() []record.Hydration {
	out := make([]record.Hydration, len(hydrationTimes))
	for i, clock := range hydrationTimes {
		out[i] = record.Hydration{
			ID:         g.id(record.KindHydrations, i),
			Time:       clock,
			Amount:     hydrationAmounts[i],
			DrinkType:  drinkTypes[i],
			RecordedBy: auth.GuestUserID,
			RecordedAt: g.at(clock),
		}
	}
	return out
}
