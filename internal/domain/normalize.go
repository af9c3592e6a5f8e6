package domain

import "strconv"

// NormalizeLine builds a CartLine from a heterogeneous product payload.
// Callers hand over product records with inconsistent field names (API
// responses, catalog rows, legacy Spanish keys), so every field is looked
// up through an ordered fallback chain and numeric values are coerced
// defensively. Quantity below 1 defaults to 1.
//
// Fallback order per field:
//
//	productId      productId, id, producto_id
//	name           name, nombre
//	brand          brand, marca
//	unitPrice      unitPrice, price, precio, precio_unitario
//	imageRef       imageRef, image, imagen, imagen_url
//	availableStock availableStock, stock
//	minStock       minStock, stock_minimo
//	active         active, activo (defaults to true)
func NormalizeLine(raw map[string]interface{}, quantity int) CartLine {
	if quantity < 1 {
		quantity = 1
	}
	price := floatField(raw, "unitPrice", "price", "precio", "precio_unitario")
	if price < 0 {
		price = 0
	}
	line := CartLine{
		ProductID:      stringField(raw, "productId", "id", "producto_id"),
		Name:           stringField(raw, "name", "nombre"),
		Brand:          stringField(raw, "brand", "marca"),
		UnitPrice:      price,
		Quantity:       quantity,
		ImageRef:       stringField(raw, "imageRef", "image", "imagen", "imagen_url"),
		AvailableStock: intField(raw, "availableStock", "stock"),
		MinStock:       intField(raw, "minStock", "stock_minimo"),
		Active:         boolField(raw, true, "active", "activo"),
	}
	line.Subtotal = line.UnitPrice * float64(line.Quantity)
	return line
}

func stringField(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func floatField(raw map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func intField(raw map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		case string:
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func boolField(raw map[string]interface{}, def bool, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key].(bool); ok {
			return v
		}
	}
	return def
}
