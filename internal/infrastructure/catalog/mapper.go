package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// PageResponse is one page of the remote catalog
type PageResponse struct {
	Parts    []RemotePart `json:"parts"`
	Page     int          `json:"page"`
	NextPage int          `json:"next_page"`
	Total    int          `json:"total"`
}

// RemotePart is a catalog part as the remote API returns it. Older payloads
// send the brand as an object and the sku as part_number.
type RemotePart struct {
	ID         RemoteID    `json:"id"`
	Name       string      `json:"name"`
	Brand      RemoteBrand `json:"brand"`
	SKU        string      `json:"sku"`
	PartNumber string      `json:"part_number"`
}

// RemoteID accepts numeric and string ids
type RemoteID string

// UnmarshalJSON keeps the id's text whether it was sent as a number or a string
func (id *RemoteID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = RemoteID(n.String())
	return nil
}

// RemoteBrand accepts either "Honda" or {"name":"Honda"}
type RemoteBrand string

// UnmarshalJSON decodes a brand string or object
func (b *RemoteBrand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = RemoteBrand(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("brand must be a string or an object with a name: %w", err)
	}
	*b = RemoteBrand(obj.Name)
	return nil
}

// MapEntries converts remote parts to comparison entries, dropping parts
// without an id or a name.
func MapEntries(parts []RemotePart) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(parts))
	for _, p := range parts {
		id := strings.TrimSpace(string(p.ID))
		name := strings.TrimSpace(p.Name)
		if id == "" || name == "" {
			continue
		}
		sku := strings.TrimSpace(p.SKU)
		if sku == "" {
			sku = strings.TrimSpace(p.PartNumber)
		}
		entries = append(entries, domain.CatalogEntry{
			ID:    id,
			Name:  name,
			Brand: strings.TrimSpace(string(p.Brand)),
			SKU:   sku,
		})
	}
	return entries
}

// Columns read from catalog export files
var (
	idColumns    = []string{"id", "part_id", "uuid"}
	nameColumns  = []string{"name", "part_name", "title"}
	brandColumns = []string{"brand", "manufacturer"}
	skuColumns   = []string{"sku", "part_number"}
)

// EntryFromRow maps one exported catalog row. Rows without a name are
// rejected; rows without an id are keyed by their 1-based position.
func EntryFromRow(row domain.Row, position int) (domain.CatalogEntry, bool) {
	name := column(row, nameColumns)
	if name == "" {
		return domain.CatalogEntry{}, false
	}
	id := column(row, idColumns)
	if id == "" {
		id = fmt.Sprintf("row-%d", position)
	}
	return domain.CatalogEntry{
		ID:    id,
		Name:  name,
		Brand: column(row, brandColumns),
		SKU:   column(row, skuColumns),
	}, true
}

func column(row domain.Row, names []string) string {
	for _, name := range names {
		value, ok := row[name]
		if !ok || value == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(value)); s != "" {
			return s
		}
	}
	return ""
}
