package recipe_test

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/recipe"
	"github.com/yerokha312/cooks-corner/internal/testutils"
)

const pancakeDto = `{
	"title": "Pancakes",
	"description": "Fluffy morning pancakes",
	"category": "Breakfast",
	"difficulty": "easy",
	"cooking_time_minutes": 20,
	"ingredients": [
		{"ingredient": "Flour", "amount": 200, "measure_unit": "g"},
		{"ingredient": "Milk", "amount": 300, "measure_unit": "ml"}
	]
}`

func createRecipe(t *testing.T, env *testutils.Env, token, dto string) recipe.Detail {
	resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/v1/recipes/", map[string]string{
		"dto": dto,
	}, token)
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var detail recipe.Detail
	assert.NoError(t, json.Unmarshal(result.Data, &detail))
	return detail
}

func TestCreateRecipe(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	detail := createRecipe(t, env, token, pancakeDto)
	assert.Equal(t, "Pancakes", detail.Title)
	assert.Equal(t, "EASY", detail.Difficulty)
	assert.Equal(t, alice.ID, detail.AuthorID)
	assert.Equal(t, "Alice", detail.AuthorName)
	assert.Len(t, detail.Ingredients, 2)

	// ingredient names are stored lowercase and deduplicated
	var count int64
	env.DB.Model(&models.Ingredient{}).Where("name = ?", "flour").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateRecipeValidation(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/v1/recipes/", map[string]string{
		"dto": `{"title": "No ingredients"}`,
	}, token)
	assert.NoError(t, err)
	assert.Equal(t, 422, resp.Code)
	testutils.AssertError(t, resp, "VALIDATION_ERROR")
}

func TestCreateRecipeUnknownCategory(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	dto := `{
		"title": "Mystery",
		"category": "Midnight Snacks",
		"difficulty": "EASY",
		"cooking_time_minutes": 5,
		"ingredients": [{"ingredient": "salt", "amount": 1, "measure_unit": "tsp"}]
	}`
	resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/v1/recipes/", map[string]string{
		"dto": dto,
	}, token)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
	testutils.AssertError(t, resp, "NOT_FOUND")
}

func TestGetRecipeIncrementsViewCount(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	bob := testutils.CreateTestUser(t, env.DB, "Bob", "bob@example.com")

	aliceToken := testutils.GetAuthToken(t, env, alice)
	detail := createRecipe(t, env, aliceToken, pancakeDto)

	// the author's own view does not count
	resp, err := testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/recipes/%d", detail.RecipeID), nil, aliceToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var entity models.Recipe
	assert.NoError(t, env.DB.First(&entity, detail.RecipeID).Error)
	assert.Equal(t, int64(0), entity.ViewCount)

	bobToken := testutils.GetAuthToken(t, env, bob)
	resp, err = testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/recipes/%d", detail.RecipeID), nil, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	assert.NoError(t, env.DB.First(&entity, detail.RecipeID).Error)
	assert.Equal(t, int64(1), entity.ViewCount)
}

func TestAnonymousViewerGetsNullFlags(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	created := createRecipe(t, env, token, pancakeDto)

	resp, err := testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/recipes/%d", created.RecipeID), nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var detail recipe.Detail
	assert.NoError(t, json.Unmarshal(result.Data, &detail))
	assert.Nil(t, detail.IsLiked)
	assert.Nil(t, detail.IsBookmarked)

	resp, err = testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/recipes/%d", created.RecipeID), nil, token)
	assert.NoError(t, err)
	result = testutils.AssertSuccess(t, resp)
	assert.NoError(t, json.Unmarshal(result.Data, &detail))
	assert.NotNil(t, detail.IsLiked)
	assert.False(t, *detail.IsLiked)
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	bob := testutils.CreateTestUser(t, env.DB, "Bob", "bob@example.com")

	aliceToken := testutils.GetAuthToken(t, env, alice)
	created := createRecipe(t, env, aliceToken, pancakeDto)

	updateDto := fmt.Sprintf(`{
		"recipe_id": %d,
		"title": "Thin Pancakes",
		"description": "Now thinner",
		"category": "Breakfast",
		"difficulty": "MEDIUM",
		"cooking_time_minutes": 25,
		"ingredients": [{"ingredient": "flour", "amount": 150, "measure_unit": "g"}]
	}`, created.RecipeID)

	bobToken := testutils.GetAuthToken(t, env, bob)
	resp, err := testutils.MakeMultipartRequest(env.App, "PUT", "/v1/recipes/", map[string]string{
		"dto": updateDto,
	}, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 403, resp.Code)
	testutils.AssertError(t, resp, "FORBIDDEN")

	resp, err = testutils.MakeMultipartRequest(env.App, "PUT", "/v1/recipes/", map[string]string{
		"dto": updateDto,
	}, aliceToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var detail recipe.Detail
	assert.NoError(t, json.Unmarshal(result.Data, &detail))
	assert.Equal(t, "Thin Pancakes", detail.Title)
	assert.Equal(t, "MEDIUM", detail.Difficulty)
	assert.Len(t, detail.Ingredients, 1)
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	resp, err := testutils.MakeMultipartImageRequest(env.App, "POST", "/v1/recipes/", map[string]string{
		"dto": pancakeDto,
	}, "pancakes.png", []byte("pancake-photo-bytes"), token)
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var detail recipe.Detail
	assert.NoError(t, json.Unmarshal(result.Data, &detail))

	var entity models.Recipe
	assert.NoError(t, env.DB.First(&entity, detail.RecipeID).Error)
	assert.NotNil(t, entity.ImageID)
	oldImageID := *entity.ImageID

	var oldImage models.Image
	assert.NoError(t, env.DB.First(&oldImage, oldImageID).Error)
	oldPath := strings.TrimPrefix(oldImage.URL, "/")
	_, err = os.Stat(oldPath)
	assert.NoError(t, err)

	updateDto := fmt.Sprintf(`{
		"recipe_id": %d,
		"title": "Pancakes",
		"description": "Fluffy morning pancakes",
		"category": "Breakfast",
		"difficulty": "EASY",
		"cooking_time_minutes": 20,
		"ingredients": [{"ingredient": "flour", "amount": 200, "measure_unit": "g"}]
	}`, detail.RecipeID)

	resp, err = testutils.MakeMultipartImageRequest(env.App, "PUT", "/v1/recipes/", map[string]string{
		"dto": updateDto,
	}, "pancakes-v2.png", []byte("new-pancake-photo-bytes"), token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	assert.NoError(t, env.DB.First(&entity, detail.RecipeID).Error)
	assert.NotNil(t, entity.ImageID)
	assert.NotEqual(t, oldImageID, *entity.ImageID)

	// the replaced photo's file and record are gone
	_, statErr := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(statErr))
	err = env.DB.First(&models.Image{}, oldImageID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFeedRouting(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	bob := testutils.CreateTestUser(t, env.DB, "Bob", "bob@example.com")

	aliceToken := testutils.GetAuthToken(t, env, alice)
	bobToken := testutils.GetAuthToken(t, env, bob)

	pancakes := createRecipe(t, env, aliceToken, pancakeDto)
	soupDto := `{
		"title": "Onion Soup",
		"description": "Slow cooked",
		"category": "Dinner",
		"difficulty": "MEDIUM",
		"cooking_time_minutes": 90,
		"ingredients": [{"ingredient": "onion", "amount": 4, "measure_unit": "pcs"}]
	}`
	soup := createRecipe(t, env, bobToken, soupDto)

	// bob bookmarks alice's pancakes
	env.DB.Create(&models.RecipeBookmark{UserID: bob.ID, RecipeID: pancakes.RecipeID})

	list := func(query, token string) []recipe.ListItem {
		resp, err := testutils.MakeRequest(env.App, "GET", "/v1/recipes/?query="+query, nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		result := testutils.AssertSuccess(t, resp)
		var items []recipe.ListItem
		assert.NoError(t, json.Unmarshal(result.Data, &items))
		return items
	}

	all := list("", "")
	assert.Len(t, all, 2)

	my := list("my", bobToken)
	assert.Len(t, my, 1)
	assert.Equal(t, soup.RecipeID, my[0].RecipeID)

	saved := list("saved", bobToken)
	assert.Len(t, saved, 1)
	assert.Equal(t, pancakes.RecipeID, saved[0].RecipeID)

	search := list("soup", "")
	assert.Len(t, search, 1)
	assert.Equal(t, "Onion Soup", search[0].Title)

	// personal queries from anonymous viewers degrade to text search
	anonymousMy := list("my", "")
	assert.Len(t, anonymousMy, 0)
}

func TestRecipesByCategory(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	createRecipe(t, env, token, pancakeDto)

	var breakfast models.Category
	assert.NoError(t, env.DB.Where("name = ?", "Breakfast").First(&breakfast).Error)

	resp, err := testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/recipes/categories/%d", breakfast.ID), nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var items []recipe.ListItem
	assert.NoError(t, json.Unmarshal(result.Data, &items))
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), result.Meta.Total)
}

func TestRecipesByUser(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "Alice", "alice@example.com")
	token := testutils.GetAuthToken(t, env, alice)

	createRecipe(t, env, token, pancakeDto)

	resp, err := testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/v1/users/recipes/%d", alice.ID), nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var items []recipe.ListItem
	assert.NoError(t, json.Unmarshal(result.Data, &items))
	assert.Len(t, items, 1)
	assert.Equal(t, "Pancakes", items[0].Title)
}

func TestListCategories(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/v1/recipes/categories", nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	result := testutils.AssertSuccess(t, resp)
	var categories []models.Category
	assert.NoError(t, json.Unmarshal(result.Data, &categories))
	assert.Len(t, categories, 5)
	assert.Equal(t, "Breakfast", categories[0].Name)
}
