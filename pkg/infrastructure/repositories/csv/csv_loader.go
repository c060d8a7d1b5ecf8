package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Table names used in validation errors
const (
	SalesTable     = "sales"
	InventoryTable = "inventory"
	OffersTable    = "offers"
)

var (
	salesColumns     = []string{"date", "sku", "qty", "price"}
	inventoryColumns = []string{"sku", "on_hand", "safety_stock"}
	offerColumns     = []string{"supplier", "sku", "price", "moq", "lead_time_days", "validity_to"}
)

// struct field to CSV column, for reporting validator failures
var columnNames = map[string]map[string]string{
	SalesTable:     {"Date": "date", "ItemID": "sku", "Quantity": "qty", "UnitPrice": "price"},
	InventoryTable: {"ItemID": "sku", "OnHand": "on_hand", "SafetyStock": "safety_stock"},
	OffersTable: {
		"SupplierID": "supplier", "ItemID": "sku", "UnitPrice": "price",
		"MinimumOrderQty": "moq", "LeadTimeDays": "lead_time_days", "ValidUntil": "validity_to",
	},
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// Loader reads the sales, inventory and offer tables from CSV
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// LoadTables reads sales.csv, inventory.csv and offers.csv from dir. A missing file
// yields an empty table so callers can ask for it.
func (l *Loader) LoadTables(dir string) (dto.Tables, error) {
	var tables dto.Tables
	var err error

	if tables.Sales, err = loadOptional(filepath.Join(dir, string(entities.InputSales)), l.ReadSales); err != nil {
		return dto.Tables{}, err
	}
	if tables.Inventory, err = loadOptional(filepath.Join(dir, string(entities.InputInventory)), l.ReadInventory); err != nil {
		return dto.Tables{}, err
	}
	if tables.Offers, err = loadOptional(filepath.Join(dir, string(entities.InputOffers)), l.ReadOffers); err != nil {
		return dto.Tables{}, err
	}
	return tables, nil
}

// LoadSales loads sales records from a CSV file
func (l *Loader) LoadSales(filename string) ([]entities.DemandRecord, error) {
	return loadFile(filename, l.ReadSales)
}

// LoadInventory loads the inventory snapshot from a CSV file
func (l *Loader) LoadInventory(filename string) ([]entities.InventoryRow, error) {
	return loadFile(filename, l.ReadInventory)
}

// LoadOffers loads the offer catalog from a CSV file
func (l *Loader) LoadOffers(filename string) ([]entities.Offer, error) {
	return loadFile(filename, l.ReadOffers)
}

// ReadSales parses date,sku,qty,price rows. Rows with an empty required cell or an
// unparseable date are skipped.
func (l *Loader) ReadSales(r io.Reader) ([]entities.DemandRecord, error) {
	rows, err := readTable(r, SalesTable, salesColumns)
	if err != nil {
		return nil, err
	}

	records := make([]entities.DemandRecord, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(row.get("date"))
		if !ok {
			continue
		}
		qty, err := row.float("qty")
		if err != nil {
			return nil, err
		}
		price, err := row.float("price")
		if err != nil {
			return nil, err
		}
		record := entities.DemandRecord{
			Date:      date,
			ItemID:    entities.ItemID(row.get("sku")),
			Quantity:  entities.Quantity(qty),
			UnitPrice: price,
		}
		if err := l.check(SalesTable, row.line, record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadInventory parses sku,on_hand,safety_stock rows
func (l *Loader) ReadInventory(r io.Reader) ([]entities.InventoryRow, error) {
	rows, err := readTable(r, InventoryTable, inventoryColumns)
	if err != nil {
		return nil, err
	}

	inventory := make([]entities.InventoryRow, 0, len(rows))
	for _, row := range rows {
		onHand, err := row.float("on_hand")
		if err != nil {
			return nil, err
		}
		safety, err := row.float("safety_stock")
		if err != nil {
			return nil, err
		}
		item := entities.InventoryRow{
			ItemID:      entities.ItemID(row.get("sku")),
			OnHand:      entities.Quantity(onHand),
			SafetyStock: entities.Quantity(safety),
		}
		if err := l.check(InventoryTable, row.line, item); err != nil {
			return nil, err
		}
		inventory = append(inventory, item)
	}
	return inventory, nil
}

// ReadOffers parses supplier,sku,price,moq,lead_time_days,validity_to rows. Rows with
// an empty required cell or an unparseable validity date are skipped.
func (l *Loader) ReadOffers(r io.Reader) ([]entities.Offer, error) {
	rows, err := readTable(r, OffersTable, offerColumns)
	if err != nil {
		return nil, err
	}

	offers := make([]entities.Offer, 0, len(rows))
	for _, row := range rows {
		validUntil, ok := parseDate(row.get("validity_to"))
		if !ok {
			continue
		}
		price, err := row.float("price")
		if err != nil {
			return nil, err
		}
		moq, err := row.float("moq")
		if err != nil {
			return nil, err
		}
		lead, err := row.float("lead_time_days")
		if err != nil {
			return nil, err
		}
		if lead != math.Trunc(lead) {
			return nil, &entities.ValidationError{Table: OffersTable, Row: row.line, Field: "lead_time_days", Reason: "must be a whole number of days"}
		}
		offer := entities.Offer{
			SupplierID:      entities.SupplierID(row.get("supplier")),
			ItemID:          entities.ItemID(row.get("sku")),
			UnitPrice:       price,
			MinimumOrderQty: entities.Quantity(moq),
			LeadTimeDays:    int(lead),
			ValidUntil:      validUntil,
		}
		if err := l.check(OffersTable, row.line, offer); err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// check runs struct validation and reports the first failure against its CSV column
func (l *Loader) check(table string, line int, row any) error {
	err := l.validate.Struct(row)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		column := columnNames[table][fe.StructField()]
		if column == "" {
			column = fe.Field()
		}
		return &entities.ValidationError{Table: table, Row: line, Field: column, Reason: describe(fe)}
	}
	return fmt.Errorf("failed to validate %s row %d: %w", table, line, err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "required":
		return "is required"
	default:
		return "failed " + fe.Tag()
	}
}

type tableRow struct {
	line   int
	table  string
	cells  []string
	column map[string]int
}

func (r tableRow) get(name string) string {
	return strings.TrimSpace(r.cells[r.column[name]])
}

func (r tableRow) float(name string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &entities.ValidationError{Table: r.table, Row: r.line, Field: name, Reason: "not a number"}
	}
	return v, nil
}

// readTable reads a headed CSV and returns rows with every required cell non-empty.
// Columns may appear in any order; extra columns are ignored.
func readTable(r io.Reader, table string, required []string) ([]tableRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", table, err)
	}
	if len(records) == 0 {
		return nil, &entities.ValidationError{Table: table, Reason: "missing header row"}
	}

	column := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		column[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := column[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &entities.ValidationError{
			Table:  table,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	rows := make([]tableRow, 0, len(records)-1)
	for i, cells := range records[1:] {
		row := tableRow{line: i + 1, table: table, cells: cells, column: column}
		if !row.complete(required) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r tableRow) complete(required []string) bool {
	for _, name := range required {
		idx := r.column[name]
		if idx >= len(r.cells) || strings.TrimSpace(r.cells[idx]) == "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func loadFile[T any](filename string, read func(io.Reader) ([]T, error)) ([]T, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()
	return read(file)
}

func loadOptional[T any](filename string, read func(io.Reader) ([]T, error)) ([]T, error) {
	rows, err := loadFile(filename, read)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	return rows, err
}
