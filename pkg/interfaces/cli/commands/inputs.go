package commands

import (
	"fmt"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/infrastructure/repositories/csv"
)

// InputFiles names the CSV inputs of a run. Explicit files override DataDir.
type InputFiles struct {
	DataDir   string
	Sales     string
	Inventory string
	Offers    string
}

// Load reads the tables. Tables not given explicitly are read from DataDir when set;
// otherwise they are left empty.
func (f InputFiles) Load() (dto.Tables, error) {
	loader := csv.NewLoader()

	var tables dto.Tables
	var err error
	if f.DataDir != "" {
		if tables, err = loader.LoadTables(f.DataDir); err != nil {
			return dto.Tables{}, fmt.Errorf("failed to load data directory: %w", err)
		}
	}
	if f.Sales != "" {
		if tables.Sales, err = loader.LoadSales(f.Sales); err != nil {
			return dto.Tables{}, fmt.Errorf("error loading sales: %w", err)
		}
	}
	if f.Inventory != "" {
		if tables.Inventory, err = loader.LoadInventory(f.Inventory); err != nil {
			return dto.Tables{}, fmt.Errorf("error loading inventory: %w", err)
		}
	}
	if f.Offers != "" {
		if tables.Offers, err = loader.LoadOffers(f.Offers); err != nil {
			return dto.Tables{}, fmt.Errorf("error loading offers: %w", err)
		}
	}
	return tables, nil
}

// Empty reports whether no input source was given
func (f InputFiles) Empty() bool {
	return f.DataDir == "" && f.Sales == "" && f.Inventory == "" && f.Offers == ""
}
