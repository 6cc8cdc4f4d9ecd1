package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"gorm.io/gorm"
)

// GeoRepository stores the continent → ward tree. Every level shares one row shape,
// so reads go through the level-agnostic GeoNode projection.
type GeoRepository interface {
	CreateContinent(ctx context.Context, c *models.Continent) error
	CreateCountry(ctx context.Context, c *models.Country) error
	CreateRegion(ctx context.Context, r *models.Region) error
	CreateDistrict(ctx context.Context, d *models.District) error
	CreateWard(ctx context.Context, w *models.Ward) error
	// Get returns a live node; GetAny also returns soft-deleted ones.
	Get(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error)
	GetAny(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error)
	IsLive(ctx context.Context, level models.GeoLevel, id uint) (bool, error)
	ResolvePath(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoPath, error)
	ListChildren(ctx context.Context, parentLevel models.GeoLevel, parentID uint) ([]models.GeoNode, error)
	Search(ctx context.Context, level models.GeoLevel, namePart string, scope *models.GeoScope, limit int) ([]models.GeoNode, error)
	Find(ctx context.Context, level models.GeoLevel, filter models.GeoFilter, p models.Pagination) (models.PageResult[models.GeoNode], error)
	Rename(ctx context.Context, level models.GeoLevel, id uint, name string) error
	SetStatus(ctx context.Context, level models.GeoLevel, id uint, status bool) error
}

type geoRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewGeoRepository creates a new GeoRepository
func NewGeoRepository(db *gorm.DB) GeoRepository {
	return &geoRepository{db: db, log: observability.NewRepoLogger("geo")}
}

func (r *geoRepository) create(ctx context.Context, level models.GeoLevel, code string, row interface{}) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.log.LogError(ctx, err, "create_"+string(level))
		return translateUnique(err, string(level), "code", code)
	}
	r.log.LogCreate(ctx, map[string]any{"level": string(level), "code": code})
	return nil
}

func (r *geoRepository) CreateContinent(ctx context.Context, c *models.Continent) error {
	return r.create(ctx, models.LevelContinent, c.Code, c)
}

func (r *geoRepository) CreateCountry(ctx context.Context, c *models.Country) error {
	return r.create(ctx, models.LevelCountry, c.Code, c)
}

func (r *geoRepository) CreateRegion(ctx context.Context, reg *models.Region) error {
	return r.create(ctx, models.LevelRegion, reg.Code, reg)
}

func (r *geoRepository) CreateDistrict(ctx context.Context, d *models.District) error {
	return r.create(ctx, models.LevelDistrict, d.Code, d)
}

func (r *geoRepository) CreateWard(ctx context.Context, w *models.Ward) error {
	return r.create(ctx, models.LevelWard, w.Code, w)
}

// geoRow is the scan target for any level; parent_id is NULL for continents.
type geoRow struct {
	ID       uint
	Code     string
	Name     string
	ParentID *uint
	Status   bool
}

func (g geoRow) node(level models.GeoLevel) models.GeoNode {
	return models.GeoNode{ID: g.ID, Level: level, Code: g.Code, Name: g.Name, ParentID: g.ParentID, Status: g.Status}
}

func nodes(level models.GeoLevel, rows []geoRow) []models.GeoNode {
	out := make([]models.GeoNode, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.node(level))
	}
	return out
}

func selectColumns(level models.GeoLevel, alias string) string {
	parent := "NULL"
	if col := level.ParentColumn(); col != "" {
		parent = alias + "." + col
	}
	return fmt.Sprintf("%[1]s.id AS id, %[1]s.code AS code, %[1]s.name AS name, %[2]s AS parent_id, %[1]s.status AS status", alias, parent)
}

// ancestorJoins joins level's table (aliased g0) up through its ancestors until top,
// returning the join clauses and the alias under which top is reachable.
func ancestorJoins(level, top models.GeoLevel) ([]string, string) {
	var joins []string
	alias := "g0"
	current := level
	for i := 1; current != top; i++ {
		parent, ok := current.Parent()
		if !ok {
			break
		}
		next := fmt.Sprintf("g%d", i)
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.id = %s.%s", parent.Table(), next, next, alias, current.ParentColumn()))
		alias = next
		current = parent
	}
	return joins, alias
}

func (r *geoRepository) from(ctx context.Context, level models.GeoLevel) *gorm.DB {
	return r.db.WithContext(ctx).Table(level.Table() + " g0")
}

func (r *geoRepository) Get(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	return r.get(ctx, level, id, true)
}

func (r *geoRepository) GetAny(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	return r.get(ctx, level, id, false)
}

func (r *geoRepository) get(ctx context.Context, level models.GeoLevel, id uint, liveOnly bool) (*models.GeoNode, error) {
	var rows []geoRow
	q := r.from(ctx, level).
		Select(selectColumns(level, "g0")).
		Where("g0.id = ?", id)
	if liveOnly {
		q = q.Where("g0.status = ?", models.StatusActive)
	}
	err := q.Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError(string(level), id)
	}
	node := rows[0].node(level)
	return &node, nil
}

func (r *geoRepository) IsLive(ctx context.Context, level models.GeoLevel, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(level.Table()).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}

// ResolvePath walks from the node to its continent in one joined query.
func (r *geoRepository) ResolvePath(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoPath, error) {
	joins, _ := ancestorJoins(level, models.LevelContinent)
	depth := len(joins) + 1

	selects := make([]string, 0, depth)
	current := level
	for i := 0; i < depth; i++ {
		selects = append(selects, fmt.Sprintf("g%[1]d.id, g%[1]d.code, g%[1]d.name, g%[1]d.status", i))
		current, _ = current.Parent()
	}

	query := fmt.Sprintf("SELECT %s FROM %s g0 %s WHERE g0.id = ?",
		strings.Join(selects, ", "), level.Table(), strings.Join(joins, " "))
	rows, err := r.db.WithContext(ctx).Raw(query, id).Rows()
	if err != nil {
		return nil, fmt.Errorf("resolve %s path: %w", level, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, models.NewNotFoundError(string(level), id)
	}

	ids := make([]sql.NullInt64, depth)
	codes := make([]sql.NullString, depth)
	names := make([]sql.NullString, depth)
	statuses := make([]sql.NullBool, depth)
	dest := make([]interface{}, 0, depth*4)
	for i := 0; i < depth; i++ {
		dest = append(dest, &ids[i], &codes[i], &names[i], &statuses[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan %s path: %w", level, err)
	}

	path := &models.GeoPath{Nodes: make([]models.GeoNode, 0, depth)}
	current = level
	for i := 0; i < depth; i++ {
		if !ids[i].Valid {
			// Dangling parent reference; the path ends here.
			break
		}
		node := models.GeoNode{
			ID:     uint(ids[i].Int64),
			Level:  current,
			Code:   codes[i].String,
			Name:   names[i].String,
			Status: statuses[i].Bool,
		}
		if i+1 < depth && ids[i+1].Valid {
			parentID := uint(ids[i+1].Int64)
			node.ParentID = &parentID
		}
		path.Nodes = append(path.Nodes, node)
		current, _ = current.Parent()
	}
	return path, rows.Err()
}

func (r *geoRepository) ListChildren(ctx context.Context, parentLevel models.GeoLevel, parentID uint) ([]models.GeoNode, error) {
	child, ok := parentLevel.Child()
	if !ok {
		return []models.GeoNode{}, nil
	}
	var rows []geoRow
	err := r.from(ctx, child).
		Select(selectColumns(child, "g0")).
		Where("g0."+child.ParentColumn()+" = ? AND g0.status = ?", parentID, models.StatusActive).
		Order("g0.name ASC, g0.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return nodes(child, rows), nil
}

// withinScope restricts g0 to descendants of scope. A scope at the queried level itself
// matches that single node.
func withinScope(db *gorm.DB, level models.GeoLevel, scope *models.GeoScope) (*gorm.DB, error) {
	if scope == nil {
		return db, nil
	}
	if scope.Level == level {
		return db.Where("g0.id = ?", scope.ID), nil
	}
	if !scope.Level.IsAncestorOf(level) {
		return nil, models.NewValidationErrorKind(models.KindHierarchy,
			fmt.Sprintf("%s is not an ancestor level of %s", scope.Level, level))
	}
	joins, alias := ancestorJoins(level, scope.Level)
	for _, j := range joins {
		db = db.Joins(j)
	}
	return db.Where(alias+".id = ?", scope.ID), nil
}

func (r *geoRepository) Search(ctx context.Context, level models.GeoLevel, namePart string, scope *models.GeoScope, limit int) ([]models.GeoNode, error) {
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	q := r.from(ctx, level).
		Select(selectColumns(level, "g0")).
		Where("LOWER(g0.name) LIKE ?"+likeEscape+" AND g0.status = ?", likePattern(namePart), models.StatusActive)
	q, err := withinScope(q, level, scope)
	if err != nil {
		return nil, err
	}

	var rows []geoRow
	if err := q.Order("g0.name ASC, g0.id ASC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return nodes(level, rows), nil
}

func geoFilterScope(level models.GeoLevel, f models.GeoFilter) func(*gorm.DB) *gorm.DB {
	ancestors := []struct {
		level models.GeoLevel
		id    *uint
	}{
		{models.LevelDistrict, f.DistrictID},
		{models.LevelRegion, f.RegionID},
		{models.LevelCountry, f.CountryID},
		{models.LevelContinent, f.ContinentID},
	}
	return func(db *gorm.DB) *gorm.DB {
		// Join once up to the highest constrained ancestor, then filter each alias.
		var top models.GeoLevel
		for _, a := range ancestors {
			if a.id != nil && a.level.IsAncestorOf(level) {
				top = a.level
			}
		}
		if top != "" {
			joins, _ := ancestorJoins(level, top)
			for _, j := range joins {
				db = db.Joins(j)
			}
			for _, a := range ancestors {
				if a.id == nil || !a.level.IsAncestorOf(level) {
					continue
				}
				alias := fmt.Sprintf("g%d", level.Depth()-a.level.Depth())
				db = db.Where(alias+".id = ?", *a.id)
			}
		}
		if f.Name != nil && strings.TrimSpace(*f.Name) != "" {
			db = db.Where("LOWER(g0.name) LIKE ?"+likeEscape, likePattern(*f.Name))
		}
		if f.Code != nil {
			db = db.Where("g0.code = ?", *f.Code)
		}
		if f.Status != nil {
			db = db.Where("g0.status = ?", *f.Status)
		}
		return db
	}
}

var geoSortable = map[string]string{"id": "g0.id", "name": "g0.name", "code": "g0.code", "created_at": "g0.created_at"}

func (r *geoRepository) Find(ctx context.Context, level models.GeoLevel, filter models.GeoFilter, p models.Pagination) (models.PageResult[models.GeoNode], error) {
	p = p.Normalize()
	scope := geoFilterScope(level, filter)

	var total int64
	if err := r.from(ctx, level).Scopes(scope).Count(&total).Error; err != nil {
		return models.PageResult[models.GeoNode]{}, fmt.Errorf("count %s: %w", level, err)
	}

	order, ok := geoSortable[p.SortField]
	if !ok {
		order = "g0.id"
	}
	if p.SortDirection == models.SortDesc {
		order += " DESC"
	}

	var rows []geoRow
	err := r.from(ctx, level).
		Scopes(scope).
		Select(selectColumns(level, "g0")).
		Order(order).
		Offset(p.Offset()).
		Limit(p.Size).
		Scan(&rows).Error
	if err != nil {
		return models.PageResult[models.GeoNode]{}, fmt.Errorf("find %s: %w", level, err)
	}
	return models.NewPageResult(nodes(level, rows), total, p), nil
}

func (r *geoRepository) update(ctx context.Context, level models.GeoLevel, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Table(level.Table()).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update_"+string(level))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(string(level), id)
	}
	return nil
}

func (r *geoRepository) Rename(ctx context.Context, level models.GeoLevel, id uint, name string) error {
	err := r.update(ctx, level, id, map[string]interface{}{"name": name, "updated_at": nowUTC()})
	if err == nil {
		r.log.LogUpdate(ctx, map[string]any{"level": string(level), "id": id, "name": name})
	}
	return err
}

func (r *geoRepository) SetStatus(ctx context.Context, level models.GeoLevel, id uint, status bool) error {
	err := r.update(ctx, level, id, map[string]interface{}{"status": status, "updated_at": nowUTC()})
	if err == nil {
		r.log.LogUpdate(ctx, map[string]any{"level": string(level), "id": id, "status": status})
	}
	return err
}
