package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Living", KindLiving},
		{"Drawing Hall", KindLiving},
		{"Dining Hall", KindDining},
		{"Dining", KindDining},
		{"Living cum Dining", KindLiving},
		{"Kitchen & Dining", KindKitchen},
		{"Master Bedroom", KindMasterBedroom},
		{"Bedroom 2", KindBedroom},
		{"Toilet", KindToilet},
		{"Common Washroom", KindToilet},
		{"Laundry", KindUtility},
		{"Pooja Room", KindPrayer},
		{"Ｋｉｔｃｈｅｎ", KindKitchen},
		{"  car   PORCH ", KindGarage},
		{"Shop front", KindRetail},
		{"Gym", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "master bedroom", Normalize("  Master\tBEDROOM "))
	assert.Equal(t, "kitchen", Normalize("Ｋｉｔｃｈｅｎ"))
}

func TestHabitableAndWet(t *testing.T) {
	assert.True(t, Habitable(KindBedroom))
	assert.True(t, Habitable(KindDining))
	assert.False(t, Habitable(KindToilet))
	assert.False(t, Habitable(KindKitchen))

	assert.True(t, Wet(KindKitchen))
	assert.True(t, Wet(KindToilet))
	assert.False(t, Wet(KindLiving))
}

func TestMatchName(t *testing.T) {
	names := []string{"Living", "Kitchen", "Bedroom", "Toilet"}

	assert.Equal(t, 1, MatchName(names, "kitchen"))
	assert.Equal(t, 1, MatchName(names, "the Kitchen"))
	assert.Equal(t, 3, MatchName(names, "bath"))
	assert.Equal(t, 0, MatchName(names, "hall"))
	assert.Equal(t, -1, MatchName(names, "garage"))
	assert.Equal(t, -1, MatchName(names, "   "))
}
