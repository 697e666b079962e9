package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"itinvent-bot/pkg/database"
	"itinvent-bot/pkg/store"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Table and column names are fixed here; caller input only ever reaches bind parameters.
const equipmentColumns = `i.serial_no AS serial, i.hw_serial_no AS hw_serial, i.inv_no AS inventory_no,
	t.type_name AS type, m.model_name AS model, v.vendor_name AS manufacturer,
	o.owner_display_name AS employee, o.owner_dept AS department,
	b.branch_name AS branch, l.descr AS location, s.descr AS status, i.descr AS description`

type equipmentRow struct {
	Serial       string
	HwSerial     string
	InventoryNo  string
	Type         string
	Model        string
	Manufacturer string
	Employee     string
	Department   string
	Branch       string
	Location     string
	Status       string
	Description  string
}

func (r equipmentRow) toEquipment() store.Equipment {
	return store.Equipment{
		Serial:       r.Serial,
		HwSerial:     r.HwSerial,
		InventoryNo:  r.InventoryNo,
		Type:         r.Type,
		Model:        r.Model,
		Manufacturer: r.Manufacturer,
		Employee:     r.Employee,
		Department:   r.Department,
		Branch:       r.Branch,
		Location:     r.Location,
		Status:       r.Status,
		Description:  r.Description,
	}
}

// GormBackend reads an IT-Invent style schema (items, owners, branches, locations, ci_models, ci_types, vendors, status).
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// OpenGorm is the Opener used in production.
func OpenGorm(ctx context.Context, d Database) (Backend, error) {
	db, err := database.Open(d.DSN, database.BackendPool, gormlogger.Warn)
	if err != nil {
		return nil, err
	}
	b := NewGormBackend(db)
	if err := b.Ping(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (g *GormBackend) equipment(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx).
		Table("items AS i").
		Select(equipmentColumns).
		Joins("LEFT JOIN ci_types t ON i.ci_type = t.ci_type AND i.type_no = t.type_no").
		Joins("LEFT JOIN ci_models m ON i.model_no = m.model_no AND i.ci_type = m.ci_type").
		Joins("LEFT JOIN vendors v ON m.vendor_no = v.vendor_no").
		Joins("LEFT JOIN owners o ON i.empl_no = o.owner_no").
		Joins("LEFT JOIN branches b ON i.branch_no = b.branch_no").
		Joins("LEFT JOIN locations l ON i.loc_no = l.loc_no").
		Joins("LEFT JOIN status s ON i.status_no = s.status_no")
}

// FindBySerial looks every variant of serial up in one query and prefers the variant closest to the input.
func (g *GormBackend) FindBySerial(ctx context.Context, serial string) (*store.Equipment, error) {
	variants := SerialVariants(serial)
	if len(variants) == 0 {
		return nil, nil
	}

	var rows []equipmentRow
	err := g.equipment(ctx).
		Where("i.serial_no IN ? OR i.hw_serial_no IN ?", variants, variants).
		Limit(2 * len(variants)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find by serial: %w", err)
	}
	return firstByVariant(rows, variants), nil
}

func firstByVariant(rows []equipmentRow, variants []string) *store.Equipment {
	for _, v := range variants {
		for _, r := range rows {
			if r.Serial == v || (r.HwSerial != "" && r.HwSerial == v) {
				e := r.toEquipment()
				return &e
			}
		}
	}
	return nil
}

// containsPattern builds an ILIKE pattern matching s literally anywhere in the column.
func containsPattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + escaped + "%"
}

func (g *GormBackend) FindByEmployee(ctx context.Context, name string, strict bool) ([]store.Equipment, error) {
	q := g.equipment(ctx)
	if strict {
		q = q.Where("o.owner_display_name = ?", name)
	} else {
		q = q.Where("o.owner_display_name ILIKE ?", containsPattern(name))
	}

	var rows []equipmentRow
	if err := q.Order("i.serial_no").Limit(500).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find by employee: %w", err)
	}

	out := make([]store.Equipment, len(rows))
	for i, r := range rows {
		out[i] = r.toEquipment()
	}
	return out, nil
}

func (g *GormBackend) pluck(ctx context.Context, table, column string) ([]string, error) {
	var out []string
	err := g.db.WithContext(ctx).
		Table(table).
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Distinct(column).
		Order(column).
		Pluck(column, &out).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return out, nil
}

func (g *GormBackend) Branches(ctx context.Context) ([]string, error) {
	return g.pluck(ctx, "branches", "branch_name")
}

// Locations lists locations that hold equipment of branch. An empty branch lists all locations.
func (g *GormBackend) Locations(ctx context.Context, branch string) ([]string, error) {
	if branch == "" {
		return g.pluck(ctx, "locations", "descr")
	}

	var out []string
	err := g.db.WithContext(ctx).
		Table("items AS i").
		Joins("JOIN locations l ON i.loc_no = l.loc_no").
		Joins("JOIN branches b ON i.branch_no = b.branch_no").
		Where("b.branch_name = ?", branch).
		Where("l.descr IS NOT NULL AND l.descr <> ''").
		Distinct("l.descr").
		Pluck("l.descr", &out).Error
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (g *GormBackend) Employees(ctx context.Context) ([]string, error) {
	return g.pluck(ctx, "owners", "owner_display_name")
}

func (g *GormBackend) Models(ctx context.Context) ([]string, error) {
	return g.pluck(ctx, "ci_models", "model_name")
}

func (g *GormBackend) EquipmentTypes(ctx context.Context) ([]string, error) {
	return g.pluck(ctx, "ci_types", "type_name")
}

func (g *GormBackend) Statuses(ctx context.Context) ([]string, error) {
	return g.pluck(ctx, "status", "descr")
}

func (g *GormBackend) OwnerDepartment(ctx context.Context, name string, strict bool) (string, error) {
	q := g.db.WithContext(ctx).Table("owners").Where("owner_dept IS NOT NULL AND owner_dept <> ''")
	if strict {
		q = q.Where("owner_display_name = ?", name)
	} else {
		q = q.Where("owner_display_name ILIKE ?", containsPattern(name))
	}

	var depts []string
	if err := q.Limit(1).Pluck("owner_dept", &depts).Error; err != nil {
		return "", fmt.Errorf("owner department: %w", err)
	}
	if len(depts) == 0 {
		return "", nil
	}
	return depts[0], nil
}

func (g *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
