package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_UnmarshalKeepsCategoryOrder(t *testing.T) {
	payload := `{
		"menu": {
			"Soups": [{"name": "Lentil", "price": 90}],
			"Burgers": [{"name": "Classic", "price": 250}, {"name": "Double", "price": 320}],
			"Drinks": [{"name": "Ayran", "price": 30, "description": "cold"}]
		}
	}`

	var d EstablishmentDetails
	require.NoError(t, json.Unmarshal([]byte(payload), &d))

	require.Len(t, d.Menu, 3)
	assert.Equal(t, "Soups", d.Menu[0].Name)
	assert.Equal(t, "Burgers", d.Menu[1].Name)
	assert.Equal(t, "Drinks", d.Menu[2].Name)
	require.NotNil(t, d.Menu[2].Items[0].Description)
	assert.Equal(t, "cold", *d.Menu[2].Items[0].Description)
}

func TestMenu_MarshalRoundTripsOrder(t *testing.T) {
	in := Menu{
		{Name: "Z", Items: []MenuItem{{Name: "z1", Price: 1}}},
		{Name: "A", Items: nil},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"Z":[{"name":"z1","price":1}],"A":[]}`, string(data))

	var out Menu
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Z", out[0].Name)
	assert.Equal(t, "A", out[1].Name)
}

func TestMenu_UnmarshalRejectsArray(t *testing.T) {
	var m Menu
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
}

func TestMenu_Preview(t *testing.T) {
	menu := Menu{
		{Name: "Mains", Items: []MenuItem{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}},
		{Name: "Drinks", Items: []MenuItem{{Name: "e"}}},
	}

	collapsed := menu.Preview(false, 3)
	require.Len(t, collapsed, 1)
	assert.Equal(t, "Mains", collapsed[0].Name)
	assert.Len(t, collapsed[0].Items, 3)

	assert.Equal(t, menu, menu.Preview(true, 3))
	assert.Nil(t, Menu(nil).Preview(false, 3))
}
