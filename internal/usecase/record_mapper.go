package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// Column spellings accepted for each identity field, in lookup order
var (
	nameColumns        = []string{"name", "part_name", "title", "product_name", "Name", "Title"}
	brandColumns       = []string{"brand", "manufacturer", "Brand", "Manufacturer", "mfg"}
	descriptionColumns = []string{"description", "desc", "Description", "product_description"}
	categoryColumns    = []string{"category", "cat", "Category", "product_category", "type"}
	skuColumns         = []string{"sku", "SKU", "part_number", "part_no", "item_number"}
	priceColumns       = []string{"price", "Price", "cost", "msrp"}
)

// specColumns maps explicit attribute columns to the field they fill. When
// several columns fill one field the later column wins.
var specColumns = []struct {
	column string
	field  string
}{
	{"bore", "bore_mm"},
	{"bore_mm", "bore_mm"},
	{"bore_in", "bore_in"},
	{"displacement", "displacement_cc"},
	{"displacement_cc", "displacement_cc"},
	{"cc", "displacement_cc"},
	{"chain", "chain_size"},
	{"chain_size", "chain_size"},
	{"teeth", "teeth"},
	{"sprocket_teeth", "teeth"},
	{"engagement_rpm", "engagement_rpm"},
	{"throat_diameter", "throat_diameter_mm"},
	{"series", "series"},
}

// MapRow resolves a loosely named input row into a pipeline input. The row is
// kept as the record's original data.
func MapRow(row domain.Row) domain.PartInput {
	input := domain.PartInput{
		Name:        firstField(row, nameColumns),
		Brand:       firstField(row, brandColumns),
		Description: firstField(row, descriptionColumns),
		Category:    firstField(row, categoryColumns),
		SKU:         firstField(row, skuColumns),
		Price:       firstField(row, priceColumns),
		Attributes:  domain.NewMetadata(),
		Original:    row,
	}

	for _, sc := range specColumns {
		value, ok := row[sc.column]
		if !ok || isBlank(value) {
			continue
		}
		input.Attributes.Set(sc.field, coerceNumber(value))
	}

	return input
}

// firstField returns the first non-blank column among names, trimmed
func firstField(row domain.Row, names []string) string {
	for _, name := range names {
		value, ok := row[name]
		if !ok || isBlank(value) {
			continue
		}
		return strings.TrimSpace(stringify(value))
	}
	return ""
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// isBlank reports whether a cell carries no usable value
func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case json.Number:
		return v == "" || v == "0"
	case bool:
		return !v
	}
	if f, ok := toFloat(value); ok {
		return f == 0
	}
	return false
}

// coerceNumber turns numeric-looking cells into numbers: text containing a
// decimal point becomes a float64, other numeric text an int. Anything else is
// returned unchanged.
func coerceNumber(value interface{}) interface{} {
	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case json.Number:
		s = v.String()
	case float64:
		if v == float64(int64(v)) {
			return int(v)
		}
		return v
	default:
		return value
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return value
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return value
}
