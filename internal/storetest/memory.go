// Package storetest provides in-memory stores with the same contracts as
// the Postgres repositories, for service and handler tests.
package storetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"etl_manager/internal/models"
)

type Metadata struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.TableDescriptor
}

func NewMetadata() *Metadata {
	return &Metadata{rows: map[int64]*models.TableDescriptor{}}
}

func (f *Metadata) find(name string, origin models.Origin) *models.TableDescriptor {
	for _, t := range f.rows {
		if t.TableName == name && t.Origin == origin {
			return t
		}
	}
	return nil
}

func (f *Metadata) insert(name string, origin models.Origin, cols []models.ColumnDescriptor) int64 {
	f.nextID++
	t := &models.TableDescriptor{ID: f.nextID, TableName: name, Origin: origin, Columns: cols}
	t.Prepare()
	f.rows[t.ID] = t
	return t.ID
}

func (f *Metadata) UpsertTarget(_ context.Context, name string, cols []models.ColumnDescriptor) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.find(name, models.OriginTarget); t != nil {
		t.Columns = cols
		return t.ID, nil
	}
	return f.insert(name, models.OriginTarget, cols), nil
}

func (f *Metadata) ResolveIdentifier(_ context.Context, value string, origin models.Origin) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if _, ok := f.rows[n]; ok {
			return n, nil
		}
	}
	if t := f.find(value, origin); t != nil {
		return t.ID, nil
	}
	return f.insert(value, origin, nil), nil
}

func (f *Metadata) GetByID(_ context.Context, id int64) (*models.TableDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *Metadata) GetByName(_ context.Context, name string, origin models.Origin) (*models.TableDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.find(name, origin); t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *Metadata) ListTargets(context.Context) ([]models.TableDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.TableDescriptor{}
	for _, t := range f.rows {
		if t.Origin == models.OriginTarget {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *Metadata) DeleteTargetsByName(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.rows {
		if t.TableName == name && t.Origin == models.OriginTarget {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

type Mappings struct {
	meta   *Metadata
	nextID int64
	rows   map[int64]*models.Mapping
}

func NewMappings(meta *Metadata) *Mappings {
	return &Mappings{meta: meta, rows: map[int64]*models.Mapping{}}
}

func (f *Mappings) Save(ctx context.Context, sourceRef, targetRef string, rules []models.ColumnRule, existingID *int64) (*models.Mapping, error) {
	src, _ := f.meta.ResolveIdentifier(ctx, sourceRef, models.OriginSource)
	tgt, _ := f.meta.ResolveIdentifier(ctx, targetRef, models.OriginTarget)

	m := &models.Mapping{SourceTableID: src, TargetTableID: tgt, Rules: rules}
	m.Prepare()
	if existingID != nil {
		if _, ok := f.rows[*existingID]; ok {
			m.ID = *existingID
		}
	}
	if m.ID == 0 {
		f.nextID++
		m.ID = f.nextID
	}
	f.rows[m.ID] = m
	cp := *m
	return &cp, nil
}

func (f *Mappings) GetByID(_ context.Context, id int64) (*models.Mapping, error) {
	if m, ok := f.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f *Mappings) FindByTables(_ context.Context, sourceID, targetID int64) (*models.Mapping, error) {
	var best *models.Mapping
	for _, m := range f.rows {
		if m.SourceTableID == sourceID && m.TargetTableID == targetID && (best == nil || m.ID > best.ID) {
			best = m
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *Mappings) List(ctx context.Context, sourceFilter, targetFilter string) ([]models.MappingSummary, error) {
	out := []models.MappingSummary{}
	for _, m := range f.rows {
		src, _ := f.meta.GetByID(ctx, m.SourceTableID)
		tgt, _ := f.meta.GetByID(ctx, m.TargetTableID)
		if !strings.Contains(strings.ToLower(src.TableName), strings.ToLower(sourceFilter)) ||
			!strings.Contains(strings.ToLower(tgt.TableName), strings.ToLower(targetFilter)) {
			continue
		}
		out = append(out, models.MappingSummary{
			ID:              m.ID,
			SourceTableID:   src.ID,
			SourceTableName: src.TableName,
			TargetTableID:   tgt.ID,
			TargetTableName: tgt.TableName,
			RuleCount:       len(m.Rules),
			CreatedAt:       m.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *Mappings) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type Templates struct {
	nextID int64
	rows   map[int64]models.Template
}

func NewTemplates() *Templates {
	return &Templates{rows: map[int64]models.Template{}}
}

func (f *Templates) Create(_ context.Context, t *models.Template) error {
	t.Prepare()
	f.nextID++
	t.ID = f.nextID
	f.rows[t.ID] = *t
	return nil
}

func (f *Templates) GetByID(_ context.Context, id int64) (*models.Template, error) {
	if t, ok := f.rows[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *Templates) List(context.Context) ([]models.Template, error) {
	out := []models.Template{}
	for _, t := range f.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Templates) Replace(_ context.Context, t *models.Template) (bool, error) {
	if _, ok := f.rows[t.ID]; !ok {
		return false, nil
	}
	t.Prepare()
	f.rows[t.ID] = *t
	return true, nil
}

type History struct {
	rows []models.GenerationHistory
}

func (f *History) Create(_ context.Context, h *models.GenerationHistory) error {
	h.Prepare()
	h.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *h)
	return nil
}

func (f *History) List(_ context.Context, limit int) ([]models.GenerationHistory, error) {
	out := []models.GenerationHistory{}
	for i := len(f.rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		h := f.rows[i]
		h.RenderedText = ""
		out = append(out, h)
	}
	return out, nil
}

func (f *History) GetByID(_ context.Context, id int64) (*models.GenerationHistory, error) {
	for _, h := range f.rows {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, nil
}

type Connections struct {
	nextID int64
	rows   map[int64]models.Connection
}

func NewConnections() *Connections {
	return &Connections{rows: map[int64]models.Connection{}}
}

func (f *Connections) Create(_ context.Context, c *models.Connection) error {
	c.Prepare()
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = *c
	return nil
}

func (f *Connections) GetByID(_ context.Context, id int64) (*models.Connection, error) {
	if c, ok := f.rows[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *Connections) ActiveConnection(_ context.Context, role models.Role) (*models.Connection, error) {
	var best *models.Connection
	for _, c := range f.rows {
		c := c
		if c.Role == role && (best == nil || c.ID > best.ID) {
			best = &c
		}
	}
	return best, nil
}

func (f *Connections) List(context.Context) ([]models.Connection, error) {
	out := []models.Connection{}
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *Connections) Update(_ context.Context, c *models.Connection) (bool, error) {
	if _, ok := f.rows[c.ID]; !ok {
		return false, nil
	}
	c.Prepare()
	f.rows[c.ID] = *c
	return true, nil
}

func (f *Connections) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

// Schema serves canned catalog contents keyed by table name. Calls counts
// reads so tests can assert that no introspection happened.
type Schema struct {
	Tables map[string][]models.ColumnDescriptor
	Calls  int
}

func (f *Schema) ListTables(context.Context, models.Connection) []models.TableDescriptor {
	f.Calls++
	out := []models.TableDescriptor{}
	for name, cols := range f.Tables {
		out = append(out, models.TableDescriptor{TableName: name, Origin: models.OriginSource, Columns: cols})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out
}

func (f *Schema) ListColumns(_ context.Context, _ models.Connection, table string) []models.ColumnDescriptor {
	f.Calls++
	if cols, ok := f.Tables[table]; ok {
		return cols
	}
	return []models.ColumnDescriptor{}
}

func (f *Metadata) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *Mappings) Len() int  { return len(f.rows) }
func (f *Templates) Len() int { return len(f.rows) }
func (f *History) Len() int   { return len(f.rows) }
