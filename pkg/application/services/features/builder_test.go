package features

import (
	"math"
	"testing"
	"time"

	"github.com/vsinha/procureplan/pkg/application/dto"
	testhelpers "github.com/vsinha/procureplan/pkg/application/services/testing"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

func TestAggregateDailyDemand_SumsSameDayQuantities(t *testing.T) {
	day1 := testhelpers.SampleStart
	day2 := day1.AddDate(0, 0, 1)

	records := []entities.DemandRecord{
		testhelpers.MustCreateDemandRecord(day2, "SKU_B", 3, 1.0),
		testhelpers.MustCreateDemandRecord(day1, "SKU_A", 2, 1.0),
		testhelpers.MustCreateDemandRecord(day1.Add(9*time.Hour), "SKU_A", 5, 1.0),
		testhelpers.MustCreateDemandRecord(day1, "SKU_B", 1, 1.0),
	}

	daily := AggregateDailyDemand(records)

	expected := []entities.DailyDemand{
		{Date: day1, ItemID: "SKU_A", Demand: 7},
		{Date: day1, ItemID: "SKU_B", Demand: 1},
		{Date: day2, ItemID: "SKU_B", Demand: 3},
	}
	if len(daily) != len(expected) {
		t.Fatalf("Expected %d daily rows, got %d", len(expected), len(daily))
	}
	for i, want := range expected {
		got := daily[i]
		if !got.Date.Equal(want.Date) || got.ItemID != want.ItemID || got.Demand != want.Demand {
			t.Errorf("Row %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestClassifyItems_ParetoTiers(t *testing.T) {
	date := testhelpers.SampleStart
	tests := []struct {
		name     string
		records  []entities.DemandRecord
		expected map[entities.ItemID]entities.ABCClass
	}{
		{
			name: "three tiers",
			records: []entities.DemandRecord{
				testhelpers.MustCreateDemandRecord(date, "X", 70, 1.0),
				testhelpers.MustCreateDemandRecord(date, "Y", 20, 1.0),
				testhelpers.MustCreateDemandRecord(date, "Z", 10, 1.0),
			},
			expected: map[entities.ItemID]entities.ABCClass{"X": entities.ClassA, "Y": entities.ClassB, "Z": entities.ClassC},
		},
		{
			name: "exact A threshold is inclusive",
			records: []entities.DemandRecord{
				testhelpers.MustCreateDemandRecord(date, "X", 80, 1.0),
				testhelpers.MustCreateDemandRecord(date, "Z", 20, 1.0),
			},
			expected: map[entities.ItemID]entities.ABCClass{"X": entities.ClassA, "Z": entities.ClassC},
		},
		{
			name: "exact B threshold is inclusive",
			records: []entities.DemandRecord{
				testhelpers.MustCreateDemandRecord(date, "a", 80, 1.0),
				testhelpers.MustCreateDemandRecord(date, "b", 15, 1.0),
				testhelpers.MustCreateDemandRecord(date, "c", 5, 1.0),
			},
			expected: map[entities.ItemID]entities.ABCClass{"a": entities.ClassA, "b": entities.ClassB, "c": entities.ClassC},
		},
		{
			name: "fractional prices on the B threshold",
			records: []entities.DemandRecord{
				testhelpers.MustCreateDemandRecord(date, "a", 8, 0.1),
				testhelpers.MustCreateDemandRecord(date, "b", 1, 0.1),
				testhelpers.MustCreateDemandRecord(date, "b", 1, 0.05),
				testhelpers.MustCreateDemandRecord(date, "c", 1, 0.05),
			},
			expected: map[entities.ItemID]entities.ABCClass{"a": entities.ClassA, "b": entities.ClassB, "c": entities.ClassC},
		},
		{
			name: "zero revenue is class C",
			records: []entities.DemandRecord{
				testhelpers.MustCreateDemandRecord(date, "FREE", 10, 0),
			},
			expected: map[entities.ItemID]entities.ABCClass{"FREE": entities.ClassC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes := ClassifyItems(tt.records)
			if len(classes) != len(tt.expected) {
				t.Fatalf("Expected %d classes, got %d", len(tt.expected), len(classes))
			}
			for _, c := range classes {
				if c.Class != tt.expected[c.ItemID] {
					t.Errorf("Expected %s to be class %s, got %s", c.ItemID, tt.expected[c.ItemID], c.Class)
				}
			}
		})
	}
}

func TestClassifyItems_OrderedByRevenueDescending(t *testing.T) {
	date := testhelpers.SampleStart
	records := []entities.DemandRecord{
		testhelpers.MustCreateDemandRecord(date, "LOW", 1, 1.0),
		testhelpers.MustCreateDemandRecord(date, "HIGH", 10, 5.0),
		testhelpers.MustCreateDemandRecord(date, "MID", 5, 2.0),
	}

	classes := ClassifyItems(records)

	order := []entities.ItemID{"HIGH", "MID", "LOW"}
	for i, id := range order {
		if classes[i].ItemID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, classes[i].ItemID)
		}
	}
	if math.Abs(classes[2].CumulativeRevenueShare-1.0) > 1e-9 {
		t.Errorf("Expected final cumulative share 1.0, got %f", classes[2].CumulativeRevenueShare)
	}
}

func TestSupplierReliability_FastestScoresOne(t *testing.T) {
	tables := testhelpers.BuildSampleTables()

	reliability := SupplierReliability(tables.Offers)

	if len(reliability) != 3 {
		t.Fatalf("Expected 3 suppliers, got %d", len(reliability))
	}
	bySupplier := make(map[entities.SupplierID]entities.SupplierReliability)
	for _, r := range reliability {
		bySupplier[r.SupplierID] = r
	}

	if got := bySupplier["SupplierC"].Reliability; got != 1.0 {
		t.Errorf("Expected fastest supplier reliability 1.0, got %f", got)
	}
	if got := bySupplier["SupplierB"].Reliability; got > 1e-6 {
		t.Errorf("Expected slowest supplier reliability near 0, got %f", got)
	}
	if got := bySupplier["SupplierA"].Reliability; math.Abs(got-2.0/3.0) > 1e-4 {
		t.Errorf("Expected SupplierA reliability near 0.667, got %f", got)
	}
	for _, r := range reliability {
		if r.Reliability < 0 || r.Reliability > 1 {
			t.Errorf("Reliability of %s out of range: %f", r.SupplierID, r.Reliability)
		}
	}
}

func TestSupplierReliability_SingleSupplier(t *testing.T) {
	offers := []entities.Offer{
		testhelpers.MustCreateOffer("Solo", "SKU_A", 1.0, 1, 4),
		testhelpers.MustCreateOffer("Solo", "SKU_B", 2.0, 1, 9),
	}

	reliability := SupplierReliability(offers)

	if len(reliability) != 1 {
		t.Fatalf("Expected 1 supplier, got %d", len(reliability))
	}
	if reliability[0].Reliability != 1.0 {
		t.Errorf("Expected reliability 1.0, got %f", reliability[0].Reliability)
	}
	if reliability[0].AvgLeadDays != 6.5 {
		t.Errorf("Expected average lead 6.5, got %f", reliability[0].AvgLeadDays)
	}
}

func TestEnrichOffers_DefaultsToClassC(t *testing.T) {
	offers := []entities.Offer{
		testhelpers.MustCreateOffer("S1", "KNOWN", 1.0, 1, 1),
		testhelpers.MustCreateOffer("S1", "UNSOLD", 1.0, 1, 1),
	}
	classes := []entities.ItemClass{{ItemID: "KNOWN", CumulativeRevenueShare: 1.0, Class: entities.ClassA}}

	enriched := EnrichOffers(offers, classes)

	if len(enriched) != 2 {
		t.Fatalf("Expected 2 enriched offers, got %d", len(enriched))
	}
	if enriched[0].Class != entities.ClassA {
		t.Errorf("Expected KNOWN to be class A, got %s", enriched[0].Class)
	}
	if enriched[1].Class != entities.ClassC {
		t.Errorf("Expected UNSOLD to default to class C, got %s", enriched[1].Class)
	}
}

func TestBuildFeatures_EmptyTables(t *testing.T) {
	features := BuildFeatures(dto.Tables{})

	if len(features.DailyDemand) != 0 || len(features.ItemClasses) != 0 {
		t.Error("Expected no demand features for empty sales")
	}
	if len(features.SupplierReliability) != 0 || len(features.EnrichedOffers) != 0 {
		t.Error("Expected no supplier features for empty offers")
	}
}

func TestBuildFeatures_SampleTables(t *testing.T) {
	tables := testhelpers.BuildSampleTables()

	features := BuildFeatures(tables)

	if len(features.DailyDemand) != 42 {
		t.Errorf("Expected 42 daily demand rows, got %d", len(features.DailyDemand))
	}
	if len(features.ItemClasses) != 3 {
		t.Errorf("Expected 3 item classes, got %d", len(features.ItemClasses))
	}
	if len(features.EnrichedOffers) != len(tables.Offers) {
		t.Errorf("Expected %d enriched offers, got %d", len(tables.Offers), len(features.EnrichedOffers))
	}
	if len(features.Inventory) != len(tables.Inventory) {
		t.Errorf("Expected %d inventory rows, got %d", len(tables.Inventory), len(features.Inventory))
	}
	if features.ItemClasses[0].ItemID != "SKU_COFFEE" {
		t.Errorf("Expected SKU_COFFEE to lead revenue, got %s", features.ItemClasses[0].ItemID)
	}
}
