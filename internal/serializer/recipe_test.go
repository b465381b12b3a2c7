package serializer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-api/internal/model"
)

func sampleRecipe() *model.Recipe {
	return &model.Recipe{
		ID:          3,
		OwnerID:     1,
		Title:       "Sample recipe",
		TimeMinutes: 5,
		Tags:        []model.Tag{{ID: 1, OwnerID: 1, Name: "some tag"}},
		Ingredients: []model.Ingredient{{ID: 2, OwnerID: 1, Name: "some ingredient"}},
	}
}

func TestSummary_JSON(t *testing.T) {
	b, err := json.Marshal(Summary(sampleRecipe()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"title":"Sample recipe","time_minutes":5,"tags":[1],"ingredients":[2]}`, string(b))
}

func TestDetail_JSON(t *testing.T) {
	b, err := json.Marshal(Detail(sampleRecipe()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":3,"title":"Sample recipe","time_minutes":5,
		"tags":[{"id":1,"name":"some tag"}],
		"ingredients":[{"id":2,"name":"some ingredient"}]
	}`, string(b))
}

func TestEmptyCollectionsEncodeAsArrays(t *testing.T) {
	r := &model.Recipe{ID: 1, Title: "plain", TimeMinutes: 1}

	b, err := json.Marshal(Summary(r))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"plain","time_minutes":1,"tags":[],"ingredients":[]}`, string(b))

	b, err = json.Marshal(Detail(r))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"plain","time_minutes":1,"tags":[],"ingredients":[]}`, string(b))

	b, err = json.Marshal(Summaries(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestSummaryOmitsOwner(t *testing.T) {
	b, err := json.Marshal(Summaries([]*model.Recipe{sampleRecipe()}))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "user_id")
	assert.NotContains(t, string(b), "owner")
}

func TestLabels(t *testing.T) {
	tags := Tags([]*model.Tag{{ID: 1, Name: "Vegan"}, {ID: 2, Name: "Dessert"}})
	assert.Equal(t, []Tag{{1, "Vegan"}, {2, "Dessert"}}, tags)

	ings := Ingredients([]*model.Ingredient{{ID: 4, Name: "Salt"}})
	assert.Equal(t, []Ingredient{{4, "Salt"}}, ings)
	assert.NotNil(t, Tags(nil))
}
