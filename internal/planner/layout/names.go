package layout

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ============================================================
// Room names
// ============================================================

const (
	KindLiving        = "living"
	KindDining        = "dining"
	KindKitchen       = "kitchen"
	KindMasterBedroom = "master_bedroom"
	KindBedroom       = "bedroom"
	KindToilet        = "toilet"
	KindPrayer        = "prayer"
	KindStudy         = "study"
	KindStore         = "store"
	KindStair         = "stair"
	KindGarage        = "garage"
	KindBalcony       = "balcony"
	KindOffice        = "office"
	KindRetail        = "retail"
	KindUtility       = "utility"
	KindOther         = "other"
)

// порядок важен: "washroom" должен попасть в toilet раньше, чем "wash" в utility
var kindKeywords = []struct {
	kind     string
	keywords []string
}{
	{KindMasterBedroom, []string{"master bed", "master suite", "master"}},
	{KindToilet, []string{"toilet", "bath", "wc", "washroom", "powder", "restroom", "lavatory"}},
	{KindBedroom, []string{"bed", "guest room", "kids room", "nursery"}},
	// "Dining Hall" не должен уйти в living по слову "hall"
	{KindDining, []string{"dining hall", "dining room"}},
	{KindLiving, []string{"living", "hall", "lounge", "drawing", "family"}},
	{KindKitchen, []string{"kitchen", "pantry"}},
	{KindDining, []string{"dining"}},
	{KindPrayer, []string{"pooja", "puja", "prayer", "mandir", "chapel", "namaz", "worship"}},
	{KindStudy, []string{"study", "library"}},
	{KindStore, []string{"store", "storage"}},
	{KindStair, []string{"stair"}},
	{KindGarage, []string{"garage", "parking", "car porch"}},
	{KindBalcony, []string{"balcony", "verandah", "veranda", "sit-out", "sitout", "terrace"}},
	{KindOffice, []string{"office", "workstation", "cabin", "conference", "meeting", "reception"}},
	{KindRetail, []string{"shop", "retail", "showroom"}},
	{KindUtility, []string{"utility", "laundry", "wash"}},
}

// Normalize приводит имя к NFKC, свёртывает регистр и схлопывает пробелы.
func Normalize(name string) string {
	s := norm.NFKC.String(name)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Classify определяет тип помещения по имени.
func Classify(name string) string {
	n := Normalize(name)
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(n, kw) {
				return entry.kind
			}
		}
	}
	return KindOther
}

// Habitable: жилые помещения, к которым применяются нормы площади и освещения.
func Habitable(kind string) bool {
	switch kind {
	case KindLiving, KindBedroom, KindMasterBedroom, KindStudy, KindOffice, KindDining:
		return true
	}
	return false
}

// Wet: помещения с мокрыми процессами.
func Wet(kind string) bool {
	return kind == KindKitchen || kind == KindToilet || kind == KindUtility
}

// MatchName ищет помещение по имени из заметок: точное совпадение,
// затем вхождение, затем совпадение по типу. -1 если не найдено.
func MatchName(names []string, query string) int {
	q := Normalize(query)
	if q == "" {
		return -1
	}

	normalized := make([]string, len(names))
	for i, n := range names {
		normalized[i] = Normalize(n)
		if normalized[i] == q {
			return i
		}
	}
	for i, n := range normalized {
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return i
		}
	}

	kind := Classify(q)
	if kind == KindOther {
		return -1
	}
	for i, n := range names {
		if Classify(n) == kind {
			return i
		}
	}
	return -1
}
