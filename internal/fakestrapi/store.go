package fakestrapi

import "time"

// collection keeps records of one model in insertion order. Callers hold
// the server mutex.
type collection struct {
	nextID  int
	records []map[string]any
}

func newCollection() *collection {
	return &collection{nextID: 1}
}

func (c *collection) insert(params map[string]any) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339)
	rec := make(map[string]any, len(params)+3)
	for k, v := range params {
		rec[k] = v
	}
	rec["id"] = c.nextID
	rec["created_at"] = now
	rec["updated_at"] = now
	c.nextID++
	c.records = append(c.records, rec)
	return copyRecord(rec)
}

func (c *collection) list() []map[string]any {
	out := make([]map[string]any, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, copyRecord(r))
	}
	return out
}

func (c *collection) index(id int) int {
	for i, r := range c.records {
		if r["id"] == id {
			return i
		}
	}
	return -1
}

func (c *collection) get(id int) (map[string]any, bool) {
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	return copyRecord(c.records[i]), true
}

func (c *collection) update(id int, params map[string]any) (map[string]any, bool) {
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	rec := c.records[i]
	for k, v := range params {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return copyRecord(rec), true
}

func (c *collection) remove(id int) (map[string]any, bool) {
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	rec := c.records[i]
	c.records = append(c.records[:i], c.records[i+1:]...)
	return rec, true
}

func copyRecord(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
