package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// EstablishmentDetails matches the get_establishment_details RPC payload.
type EstablishmentDetails struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Amenity        Amenity     `json:"amenity"`
	DistanceMeters float64     `json:"distance_meters"`
	Location       Location    `json:"location"`
	Phone          string      `json:"phone,omitempty"`
	OpeningHours   *string     `json:"opening_hours"`
	Stats          ReviewStats `json:"stats"`
	Menu           Menu        `json:"menu,omitempty"`
	Reviews        []Review    `json:"reviews"`
}

type ReviewStats struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

type MenuItem struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

type MenuCategory struct {
	Name  string
	Items []MenuItem
}

// Menu keeps categories in the order the backend sent them. On the wire it is a
// JSON object keyed by category name, so a plain map would lose that order.
type Menu []MenuCategory

func (m *Menu) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("menu: expected object, got %v", tok)
	}
	var out Menu
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("menu: expected category name, got %v", keyTok)
		}
		var items []MenuItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("menu: category %q: %w", key, err)
		}
		out = append(out, MenuCategory{Name: key, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

func (m Menu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		items := c.Items
		if items == nil {
			items = []MenuItem{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Preview returns the first category with at most maxItems items, or the whole
// menu when expanded.
func (m Menu) Preview(expanded bool, maxItems int) Menu {
	if expanded || len(m) == 0 {
		return m
	}
	first := m[0]
	items := first.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return Menu{{Name: first.Name, Items: items}}
}

type Review struct {
	ID         string    `json:"id"`
	UserName   string    `json:"user_name"`
	IsVerified bool      `json:"is_verified"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	MediaURL   *string   `json:"media_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
