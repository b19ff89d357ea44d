package services

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

// ── Products ────────────────────────────────────────────────────────────

func productFromRecord(r *core.Record) (quote.Product, error) {
	p := quote.Product{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Category:    r.GetString("category"),
		Description: r.GetString("description"),
		BasePrice:   r.GetFloat("base_price"),
		Dimensions:  r.GetString("dimensions"),
		CBM:         r.GetFloat("cbm"),
		ImageURL:    r.GetString("image_url"),
		Created:     recordTime(r, "created"),
		Updated:     recordTime(r, "updated"),
	}
	if err := unmarshalJSONField(r, "annotatable_parts", &p.Parts); err != nil {
		return quote.Product{}, err
	}
	return p, nil
}

func (s *Store) ListProducts() ([]quote.Product, error) {
	records, err := s.app.FindRecordsByFilter("products", "id != ''", "category,name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]quote.Product, 0, len(records))
	for _, r := range records {
		p, err := productFromRecord(r)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) GetProduct(id string) (quote.Product, error) {
	r, err := s.app.FindRecordById("products", id)
	if err != nil {
		return quote.Product{}, lookupErr(err, "product", id)
	}
	return productFromRecord(r)
}

// SaveProduct creates the product when it has no id, otherwise updates it.
// Saved quotations keep their own snapshots and are not affected.
func (s *Store) SaveProduct(p quote.Product) (quote.Product, error) {
	if err := ValidateProduct(p); err != nil {
		return quote.Product{}, err
	}
	r, err := s.recordForSave("products", p.ID, "product")
	if err != nil {
		return quote.Product{}, err
	}
	if p.Parts == nil {
		p.Parts = []quote.AnnotatablePart{}
	}
	r.Set("name", strings.TrimSpace(p.Name))
	r.Set("category", strings.TrimSpace(p.Category))
	r.Set("description", p.Description)
	r.Set("base_price", p.BasePrice)
	r.Set("dimensions", strings.TrimSpace(p.Dimensions))
	r.Set("cbm", p.CBM)
	r.Set("image_url", p.ImageURL)
	r.Set("annotatable_parts", p.Parts)
	if err := s.app.Save(r); err != nil {
		return quote.Product{}, fmt.Errorf("save product: %w", err)
	}
	return productFromRecord(r)
}

func (s *Store) DeleteProduct(id string) error {
	return s.deleteRecord("products", id, "product")
}

// ── Materials ───────────────────────────────────────────────────────────

// TagKey normalises a tag for matching: case, spacing and punctuation are
// ignored.
func TagKey(tag string) string {
	return slug.Make(tag)
}

func tagKeys(tags []string) string {
	var keys []string
	for _, t := range tags {
		if k := TagKey(t); k != "" && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	return "|" + strings.Join(keys, "|") + "|"
}

// cleanTags trims tags and drops empty values and duplicates by key.
func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		k := TagKey(t)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

func materialFromRecord(r *core.Record) (quote.Material, error) {
	m := quote.Material{
		ID:             r.Id,
		Name:           r.GetString("name"),
		Code:           r.GetString("code"),
		Type:           quote.MaterialType(r.GetString("type")),
		PriceUplift:    r.GetFloat("price_uplift"),
		Availability:   quote.Availability(r.GetString("availability")),
		Supplier:       r.GetString("supplier"),
		SwatchImageURL: r.GetString("swatch_image_url"),
		Created:        recordTime(r, "created"),
		Updated:        recordTime(r, "updated"),
	}
	if m.Availability == "" {
		m.Availability = quote.InStock
	}
	if err := unmarshalJSONField(r, "tags", &m.Tags); err != nil {
		return quote.Material{}, err
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

func materialsFromRecords(records []*core.Record) ([]quote.Material, error) {
	materials := make([]quote.Material, 0, len(records))
	for _, r := range records {
		m, err := materialFromRecord(r)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// ListMaterials returns every material ordered by type, then name.
func (s *Store) ListMaterials() ([]quote.Material, error) {
	records, err := s.app.FindRecordsByFilter("materials", "id != ''", "type,name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materialsFromRecords(records)
}

func (s *Store) ListMaterialsByType(t quote.MaterialType) ([]quote.Material, error) {
	records, err := s.app.FindRecordsByFilter("materials", "type = {:type}", "name", 0, 0,
		map[string]any{"type": string(t)})
	if err != nil {
		return nil, fmt.Errorf("list %s materials: %w", t, err)
	}
	return materialsFromRecords(records)
}

// MaterialQuery narrows SearchMaterials. Tags match when any of them
// overlaps; Types likewise.
type MaterialQuery struct {
	Text  string
	Tags  []string
	Types []quote.MaterialType
	Limit int
}

// SearchMaterials matches name, code and supplier case-insensitively.
func (s *Store) SearchMaterials(q MaterialQuery) ([]quote.Material, error) {
	var clauses []string
	params := map[string]any{}

	if text := strings.TrimSpace(q.Text); text != "" {
		clauses = append(clauses, "(name ~ {:q} || code ~ {:q} || supplier ~ {:q})")
		params["q"] = text
	}

	var typeClauses []string
	for i, t := range q.Types {
		key := fmt.Sprintf("type%d", i)
		typeClauses = append(typeClauses, fmt.Sprintf("type = {:%s}", key))
		params[key] = string(t)
	}
	if len(typeClauses) > 0 {
		clauses = append(clauses, "("+strings.Join(typeClauses, " || ")+")")
	}

	var tagClauses []string
	for i, t := range q.Tags {
		k := TagKey(t)
		if k == "" {
			continue
		}
		key := fmt.Sprintf("tag%d", i)
		tagClauses = append(tagClauses, fmt.Sprintf("tag_keys ~ {:%s}", key))
		params[key] = "|" + k + "|"
	}
	if len(tagClauses) > 0 {
		clauses = append(clauses, "("+strings.Join(tagClauses, " || ")+")")
	}

	filter := "id != ''"
	if len(clauses) > 0 {
		filter = strings.Join(clauses, " && ")
	}
	limit := q.Limit
	if limit < 0 {
		limit = 0
	}

	records, err := s.app.FindRecordsByFilter("materials", filter, "type,name", limit, 0, params)
	if err != nil {
		return nil, fmt.Errorf("search materials: %w", err)
	}
	return materialsFromRecords(records)
}

// AllTags returns every distinct tag, sorted case-insensitively.
func (s *Store) AllTags() ([]string, error) {
	materials, err := s.ListMaterials()
	if err != nil {
		return nil, err
	}
	var all []string
	for _, m := range materials {
		all = append(all, m.Tags...)
	}
	tags := cleanTags(all)
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i]) < strings.ToLower(tags[j])
	})
	return tags, nil
}

func (s *Store) GetMaterial(id string) (quote.Material, error) {
	r, err := s.app.FindRecordById("materials", id)
	if err != nil {
		return quote.Material{}, lookupErr(err, "material", id)
	}
	return materialFromRecord(r)
}

// SaveMaterial creates or updates a material. Annotations on saved
// quotations keep the snapshot taken when they were attached.
func (s *Store) SaveMaterial(m quote.Material) (quote.Material, error) {
	if m.Availability == "" {
		m.Availability = quote.InStock
	}
	if err := ValidateMaterial(m); err != nil {
		return quote.Material{}, err
	}
	r, err := s.recordForSave("materials", m.ID, "material")
	if err != nil {
		return quote.Material{}, err
	}
	tags := cleanTags(m.Tags)
	r.Set("name", strings.TrimSpace(m.Name))
	r.Set("code", strings.TrimSpace(m.Code))
	r.Set("type", string(m.Type))
	r.Set("price_uplift", m.PriceUplift)
	r.Set("availability", string(m.Availability))
	r.Set("supplier", strings.TrimSpace(m.Supplier))
	r.Set("swatch_image_url", m.SwatchImageURL)
	r.Set("tags", tags)
	r.Set("tag_keys", tagKeys(tags))
	if err := s.app.Save(r); err != nil {
		return quote.Material{}, fmt.Errorf("save material: %w", err)
	}
	return materialFromRecord(r)
}

func (s *Store) DeleteMaterial(id string) error {
	return s.deleteRecord("materials", id, "material")
}

// ── Clients ─────────────────────────────────────────────────────────────

func clientFromRecord(r *core.Record) quote.Client {
	return quote.Client{
		ID:      r.Id,
		Name:    r.GetString("name"),
		Email:   r.GetString("email"),
		Phone:   r.GetString("phone"),
		Company: r.GetString("company"),
		Address: r.GetString("address"),
		Notes:   r.GetString("notes"),
		Created: recordTime(r, "created"),
		Updated: recordTime(r, "updated"),
	}
}

func clientsFromRecords(records []*core.Record) []quote.Client {
	clients := make([]quote.Client, 0, len(records))
	for _, r := range records {
		clients = append(clients, clientFromRecord(r))
	}
	return clients
}

func (s *Store) ListClients() ([]quote.Client, error) {
	records, err := s.app.FindRecordsByFilter("clients", "id != ''", "name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clientsFromRecords(records), nil
}

// SearchClients matches name, email or company. An empty query lists all.
func (s *Store) SearchClients(q string) ([]quote.Client, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListClients()
	}
	records, err := s.app.FindRecordsByFilter("clients",
		"name ~ {:q} || email ~ {:q} || company ~ {:q}", "name", 0, 0,
		map[string]any{"q": q})
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return clientsFromRecords(records), nil
}

func (s *Store) GetClient(id string) (quote.Client, error) {
	r, err := s.app.FindRecordById("clients", id)
	if err != nil {
		return quote.Client{}, lookupErr(err, "client", id)
	}
	return clientFromRecord(r), nil
}

// SaveClient creates or updates a client. Quotations that copied the
// client's contact fields keep their copies.
func (s *Store) SaveClient(c quote.Client) (quote.Client, error) {
	if err := ValidateClient(c); err != nil {
		return quote.Client{}, err
	}
	r, err := s.recordForSave("clients", c.ID, "client")
	if err != nil {
		return quote.Client{}, err
	}
	r.Set("name", strings.TrimSpace(c.Name))
	r.Set("email", strings.TrimSpace(c.Email))
	r.Set("phone", strings.TrimSpace(c.Phone))
	r.Set("company", strings.TrimSpace(c.Company))
	r.Set("address", c.Address)
	r.Set("notes", c.Notes)
	if err := s.app.Save(r); err != nil {
		return quote.Client{}, fmt.Errorf("save client: %w", err)
	}
	return clientFromRecord(r), nil
}

func (s *Store) DeleteClient(id string) error {
	return s.deleteRecord("clients", id, "client")
}

// ── shared ──────────────────────────────────────────────────────────────

func (s *Store) recordForSave(collection, id, what string) (*core.Record, error) {
	if id != "" {
		r, err := s.app.FindRecordById(collection, id)
		if err != nil {
			return nil, lookupErr(err, what, id)
		}
		return r, nil
	}
	col, err := s.app.FindCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	return core.NewRecord(col), nil
}

func (s *Store) deleteRecord(collection, id, what string) error {
	r, err := s.app.FindRecordById(collection, id)
	if err != nil {
		return lookupErr(err, what, id)
	}
	if err := s.app.Delete(r); err != nil {
		return fmt.Errorf("delete %s %s: %w", what, id, err)
	}
	return nil
}
