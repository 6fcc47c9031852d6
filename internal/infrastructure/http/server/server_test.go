package server_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/application/contact"
	"github.com/recipemanager/server/internal/application/importer"
	"github.com/recipemanager/server/internal/application/ingredient"
	"github.com/recipemanager/server/internal/application/recipe"
	"github.com/recipemanager/server/internal/application/user"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/http/handlers"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/infrastructure/http/server"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/infrastructure/notification"
	gormrepo "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"github.com/recipemanager/server/internal/infrastructure/persistence/memory"
	"github.com/recipemanager/server/internal/infrastructure/security"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/healthcheck"
	"github.com/recipemanager/server/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// pngHeader is enough of a PNG for the upload path, which does not decode images
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// APISuite drives the full router against an in-memory database
type APISuite struct {
	suite.Suite

	handler http.Handler
	factory *testutils.Factory
	storage *testutils.MockStorage
	source  *testutils.MockRecipeSource
	users   outbound.UserRepository
	check   *testutils.HTTPAssertions
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func testConfig(uploads string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "RecipeManager", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 10 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret-that-is-long-enough-for-hmac",
			JWTExpiration: time.Hour,
			Issuer:        "recipemanager",
			CookieName:    "auth_token",
		},
		Storage: config.StorageConfig{
			Provider:     "local",
			LocalPath:    uploads,
			PublicPath:   "/uploads",
			MaxFileSize:  1 << 20,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
		Importer:   config.ImporterConfig{RunTimeout: time.Minute},
		RateLimit:  config.RateLimitConfig{Enable: false},
		Monitoring: config.MonitoringConfig{EnableMetrics: true, MetricsPath: "/metrics"},
	}
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	t := s.T()
	logger := zap.NewNop()
	cfg := testConfig(t.TempDir())

	db := testutils.NewSQLiteDB(t)
	cache := memory.NewCacheRepository(time.Minute)
	t.Cleanup(func() { cache.Close() })

	userRepo := gormrepo.NewUserRepository(db)
	ingredientRepo := gormrepo.NewIngredientRepository(db)
	recipeRepo := gormrepo.NewRecipeRepository(db)
	contactRepo := gormrepo.NewContactRepository(db)

	tokens, err := security.NewAuthService(cfg, cache, logger)
	s.Require().NoError(err)

	v := validation.New()
	metrics := monitoring.NewMetrics()
	events := &testutils.RecordingPublisher{}

	s.storage = testutils.NewMockStorage()
	s.source = &testutils.MockRecipeSource{}
	s.users = userRepo
	s.factory = testutils.NewFactory(t, 42)
	s.check = testutils.NewHTTPAssertions(t)

	userService := user.NewUserService(userRepo, tokens, v, logger)
	ingredientService := ingredient.NewIngredientService(ingredientRepo, v, logger)
	recipeService := recipe.NewRecipeService(recipeRepo, ingredientRepo, s.storage, cache, events, v,
		recipe.Options{Images: recipe.ImagePolicy{MaxBytes: cfg.Storage.MaxFileSize, AllowedTypes: cfg.Storage.AllowedTypes}},
		logger)
	contactService := contact.NewContactService(contactRepo, notification.NewLogNotifier(logger), v, logger)
	importService := importer.NewService(s.source, recipeRepo, ingredientRepo, userRepo, events, cache,
		importer.Options{IngredientLimit: 10, MealsPerCategory: 1, Categories: []string{"Beef"}},
		logger)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	health := healthcheck.New(cfg.App.Version, logger)
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	mw := middleware.New(cfg, logger, tracenoop.NewTracerProvider().Tracer("test"), metrics)
	srv := server.NewServer(cfg, logger, mw, server.Handlers{
		Auth:        handlers.NewAuthHandler(userService, cfg.Auth, metrics, logger),
		Ingredients: handlers.NewIngredientHandler(ingredientService),
		Recipes:     handlers.NewRecipeHandler(recipeService, logger),
		Contact:     handlers.NewContactHandler(contactService, metrics),
		Admin:       handlers.NewAdminHandler(importService, metrics, cfg.Importer.RunTimeout, logger),
	}, userService, health, metrics)

	s.handler = srv.Handler()
}

func (s *APISuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return testutils.Serve(s.handler, testutils.JSONRequest(s.T(), method, path, body, token))
}

// register signs up a fresh user and returns its token
func (s *APISuite) register() (string, inbound.UserDTO) {
	faker := s.factory.Faker()
	w := s.do(http.MethodPost, "/api/auth/register", inbound.RegisterCommand{
		Email:     fmt.Sprintf("%s.%s", uuid.NewString()[:8], faker.Email()),
		Password:  testutils.DefaultPassword,
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
	}, "")
	s.check.Status(w, http.StatusCreated)

	var resp struct {
		User  inbound.UserDTO `json:"user"`
		Token string          `json:"token"`
	}
	testutils.DecodeInto(s.T(), w, &resp)
	s.Require().NotEmpty(resp.Token)
	return resp.Token, resp.User
}

// adminToken stores an admin account and signs it in
func (s *APISuite) adminToken() string {
	admin := s.factory.Admin()
	s.Require().NoError(s.users.Create(context.Background(), admin))

	w := s.do(http.MethodPost, "/api/auth/login", inbound.LoginCommand{
		Email:    admin.Email(),
		Password: testutils.DefaultPassword,
	}, "")
	s.check.Status(w, http.StatusOK)
	return testutils.DecodeJSON(s.T(), w)["token"].(string)
}

func (s *APISuite) createIngredient(token, name string, calories, protein float64) inbound.IngredientDTO {
	w := s.do(http.MethodPost, "/api/ingredients", inbound.CreateIngredientCommand{
		Name:     name,
		Unit:     "g",
		Calories: calories,
		Protein:  protein,
	}, token)
	s.check.Status(w, http.StatusCreated)

	var resp struct {
		Ingredient inbound.IngredientDTO `json:"ingredient"`
	}
	testutils.DecodeInto(s.T(), w, &resp)
	return resp.Ingredient
}

func (s *APISuite) createRecipe(token string, servings int, lines ...inbound.RecipeIngredientInput) inbound.RecipeDTO {
	w := s.do(http.MethodPost, "/api/recipes", inbound.CreateRecipeCommand{
		Name:         "Chicken rice",
		Type:         "Dinner",
		Description:  "Rice with chicken",
		Servings:     servings,
		Instructions: []string{"Cook rice", "Add chicken"},
		Ingredients:  lines,
	}, token)
	s.check.Status(w, http.StatusCreated)

	var resp struct {
		Recipe inbound.RecipeDTO `json:"recipe"`
	}
	testutils.DecodeInto(s.T(), w, &resp)
	return resp.Recipe
}

func (s *APISuite) uploadRequest(path, token, contentType string, count int) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for i := 0; i < count; i++ {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="photo%d.png"`, handlers.ImagesField, i))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write(pngHeader)
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *APISuite) TestAuthFlow() {
	token, registered := s.register()

	w := s.do(http.MethodGet, "/api/auth/user", nil, token)
	s.check.Status(w, http.StatusOK)
	body := testutils.DecodeJSON(s.T(), w)
	s.Equal(true, body["success"])
	s.Equal(registered.Email, body["user"].(map[string]interface{})["email"])

	w = s.do(http.MethodPost, "/api/auth/logout", nil, token)
	s.check.Status(w, http.StatusOK)

	// The token is revoked after logout
	w = s.do(http.MethodGet, "/api/auth/user", nil, token)
	s.check.ErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED")
}

func (s *APISuite) TestLogin() {
	_, registered := s.register()

	w := s.do(http.MethodPost, "/api/auth/login", inbound.LoginCommand{
		Email:    registered.Email,
		Password: testutils.DefaultPassword,
	}, "")
	s.check.Status(w, http.StatusOK)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	s.Require().NotNil(cookie, "login sets the auth cookie")
	s.True(cookie.HttpOnly)

	// The cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(cookie)
	s.check.Status(testutils.Serve(s.handler, req), http.StatusOK)

	w = s.do(http.MethodPost, "/api/auth/login", inbound.LoginCommand{
		Email:    registered.Email,
		Password: "wrong-password",
	}, "")
	s.check.ErrorCode(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func (s *APISuite) TestRegisterRejectsBadInput() {
	_, registered := s.register()

	w := s.do(http.MethodPost, "/api/auth/register", inbound.RegisterCommand{
		Email:     registered.Email,
		Password:  testutils.DefaultPassword,
		FirstName: "Again",
	}, "")
	s.check.ErrorCode(w, http.StatusConflict, "EMAIL_ALREADY_EXISTS")

	w = s.do(http.MethodPost, "/api/auth/register", inbound.RegisterCommand{
		Email:     "not-an-email",
		Password:  "short",
		FirstName: "Bad",
	}, "")
	s.check.ErrorCode(w, http.StatusBadRequest, "VALIDATION_FAILED")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	s.check.ErrorCode(testutils.Serve(s.handler, req), http.StatusBadRequest, "BAD_REQUEST")
}

func (s *APISuite) TestIngredients() {
	token, _ := s.register()

	created := s.createIngredient(token, "Basmati Rice", 3.6, 0.07)
	s.Equal("Basmati Rice", created.Name)
	s.Equal("user", created.Source)

	w := s.do(http.MethodPost, "/api/ingredients", inbound.CreateIngredientCommand{Name: "basmati rice"}, token)
	s.check.ErrorCode(w, http.StatusConflict, "INGREDIENT_ALREADY_EXISTS")

	w = s.do(http.MethodPost, "/api/ingredients", inbound.CreateIngredientCommand{Name: "Oats"}, "")
	s.check.ErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = s.do(http.MethodGet, "/api/ingredients/search?query=basm", nil, "")
	s.check.Status(w, http.StatusOK)
	var list inbound.IngredientList
	testutils.DecodeInto(s.T(), w, &list)
	s.Require().Equal(1, list.Total)
	s.Equal(created.ID, list.Ingredients[0].ID)

	w = s.do(http.MethodGet, "/api/ingredients/"+created.ID.String(), nil, "")
	s.check.Status(w, http.StatusOK)

	w = s.do(http.MethodGet, "/api/ingredients/"+uuid.NewString(), nil, "")
	s.check.ErrorCode(w, http.StatusNotFound, "INGREDIENT_NOT_FOUND")

	w = s.do(http.MethodGet, "/api/ingredients/not-a-uuid", nil, "")
	s.check.ErrorCode(w, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *APISuite) TestRecipeLifecycle() {
	token, author := s.register()
	rice := s.createIngredient(token, "Rice", 3.6, 0.07)
	chicken := s.createIngredient(token, "Chicken", 1.65, 0.31)

	created := s.createRecipe(token, 2,
		inbound.RecipeIngredientInput{IngredientID: rice.ID.String(), QuantityPerServing: 100},
		inbound.RecipeIngredientInput{IngredientID: chicken.ID.String(), QuantityPerServing: 150},
	)
	s.Equal(author.ID, created.AuthorID)
	s.Len(created.Ingredients, 2)

	w := s.do(http.MethodGet, "/api/recipes/"+created.ID.String()+"/nutrition", nil, "")
	s.check.Status(w, http.StatusOK)
	var nutrition struct {
		Nutrition inbound.NutritionDTO `json:"nutrition"`
	}
	testutils.DecodeInto(s.T(), w, &nutrition)
	s.InDelta(3.6*100+1.65*150, nutrition.Nutrition.Total.Calories, 0.001)
	s.InDelta(nutrition.Nutrition.Total.Calories/2, nutrition.Nutrition.PerServing.Calories, 0.001)
	s.InDelta(0.07*100+0.31*150, nutrition.Nutrition.Total.Protein, 0.001)
	s.Equal(608.0, nutrition.Nutrition.Display.Total.Calories)

	w = s.do(http.MethodGet, "/api/recipes", nil, token)
	s.check.Status(w, http.StatusOK)
	var mine inbound.RecipeList
	testutils.DecodeInto(s.T(), w, &mine)
	s.Equal(1, mine.Total)

	w = s.do(http.MethodGet, "/api/recipes/public?type=Dinner&query=chicken", nil, "")
	s.check.Status(w, http.StatusOK)
	var public inbound.RecipeList
	testutils.DecodeInto(s.T(), w, &public)
	s.Equal(1, public.Total)

	update := inbound.UpdateRecipeCommand{
		Name:        "Chicken fried rice",
		Type:        "Lunch",
		Description: "Fried",
		Servings:    4,
	}
	other, _ := s.register()
	w = s.do(http.MethodPut, "/api/recipes/"+created.ID.String(), update, other)
	s.check.ErrorCode(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS")

	w = s.do(http.MethodPut, "/api/recipes/"+created.ID.String(), update, token)
	s.check.Status(w, http.StatusOK)
	var updated struct {
		Recipe inbound.RecipeDTO `json:"recipe"`
	}
	testutils.DecodeInto(s.T(), w, &updated)
	s.Equal("Chicken fried rice", updated.Recipe.Name)
	s.Equal(4, updated.Recipe.Servings)
	s.Len(updated.Recipe.Ingredients, 2, "omitted ingredients are kept")

	w = s.do(http.MethodDelete, "/api/recipes/"+created.ID.String(), nil, other)
	s.check.ErrorCode(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS")

	w = s.do(http.MethodDelete, "/api/recipes/"+created.ID.String(), nil, token)
	s.check.Status(w, http.StatusOK)

	w = s.do(http.MethodGet, "/api/recipes/"+created.ID.String(), nil, "")
	s.check.ErrorCode(w, http.StatusNotFound, "RECIPE_NOT_FOUND")
}

func (s *APISuite) TestCreateRecipeValidation() {
	token, _ := s.register()

	w := s.do(http.MethodPost, "/api/recipes", inbound.CreateRecipeCommand{
		Name:     "No description",
		Type:     "Dinner",
		Servings: 2,
	}, token)
	s.check.ErrorCode(w, http.StatusBadRequest, "VALIDATION_FAILED")

	w = s.do(http.MethodPost, "/api/recipes", inbound.CreateRecipeCommand{
		Name:        "Bad type",
		Type:        "Brunch",
		Description: "x",
		Servings:    2,
	}, token)
	s.check.ErrorCode(w, http.StatusBadRequest, "VALIDATION_FAILED")

	w = s.do(http.MethodPost, "/api/recipes", inbound.CreateRecipeCommand{
		Name:        "Ghost ingredient",
		Type:        "Dinner",
		Description: "x",
		Servings:    2,
		Ingredients: []inbound.RecipeIngredientInput{{IngredientID: uuid.NewString(), QuantityPerServing: 10}},
	}, token)
	s.check.ErrorCode(w, http.StatusBadRequest, "BAD_REQUEST")

	w = s.do(http.MethodPost, "/api/recipes", inbound.CreateRecipeCommand{
		Name:        "Anonymous",
		Type:        "Dinner",
		Description: "x",
		Servings:    1,
	}, "")
	s.check.ErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED")
}

func (s *APISuite) TestImageUploads() {
	token, _ := s.register()
	created := s.createRecipe(token, 1)
	path := "/api/recipes/" + created.ID.String() + "/images"

	w := testutils.Serve(s.handler, s.uploadRequest(path, token, "image/png", 5))
	s.check.Status(w, http.StatusCreated)
	var uploaded struct {
		Images []inbound.ImageDTO `json:"images"`
	}
	testutils.DecodeInto(s.T(), w, &uploaded)
	s.Require().Len(uploaded.Images, 5)
	s.True(uploaded.Images[0].IsCover)
	s.Len(s.storage.Keys(), 5)

	w = testutils.Serve(s.handler, s.uploadRequest(path, token, "image/png", 1))
	s.check.ErrorCode(w, http.StatusBadRequest, "IMAGE_LIMIT_REACHED")
	s.Len(s.storage.Keys(), 5, "rejected uploads are not stored")

	imagePath := path + "/" + uploaded.Images[4].ID.String()
	w = s.do(http.MethodDelete, imagePath, nil, token)
	s.check.Status(w, http.StatusOK)
	s.Len(s.storage.Deleted(), 1)

	w = s.do(http.MethodDelete, imagePath, nil, token)
	s.check.ErrorCode(w, http.StatusNotFound, "IMAGE_NOT_FOUND")

	w = testutils.Serve(s.handler, s.uploadRequest(path, token, "application/pdf", 1))
	s.check.ErrorCode(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE")

	other, _ := s.register()
	w = testutils.Serve(s.handler, s.uploadRequest(path, other, "image/png", 1))
	s.check.ErrorCode(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS")

	w = testutils.Serve(s.handler, s.uploadRequest(path, token, "image/png", 0))
	s.check.ErrorCode(w, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *APISuite) TestContact() {
	w := s.do(http.MethodPost, "/api/contact", inbound.ContactCommand{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "Great recipes!",
	}, "")
	s.check.Status(w, http.StatusCreated)
	body := testutils.DecodeJSON(s.T(), w)
	s.NotEmpty(body["id"])

	w = s.do(http.MethodPost, "/api/contact", inbound.ContactCommand{Name: "Ada", Email: "nope"}, "")
	s.check.ErrorCode(w, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (s *APISuite) stubSource() {
	s.source.On("ListIngredients", mock.Anything).Return([]outbound.SourceIngredient{
		{ID: "1", Name: "Chicken"},
		{ID: "2", Name: "Salt"},
	}, nil)
	s.source.On("MealsByCategory", mock.Anything, "Beef").Return([]outbound.SourceMealRef{
		{ID: "52772", Name: "Beef Stew"},
	}, nil)
	s.source.On("LookupMeal", mock.Anything, "52772").Return(&outbound.SourceMeal{
		ID:           "52772",
		Name:         "Beef Stew",
		Category:     "Beef",
		Instructions: "Brown the beef.\nSimmer for two hours.",
		Ingredients: []outbound.SourceMealIngredient{
			{Name: "Beef", Measure: "1 lb"},
			{Name: "salt", Measure: "to taste"},
		},
	}, nil)
}

func (s *APISuite) TestAdminImport() {
	userToken, _ := s.register()

	w := s.do(http.MethodPost, "/api/admin/import", nil, "")
	s.check.ErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = s.do(http.MethodPost, "/api/admin/import", nil, userToken)
	s.check.ErrorCode(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS")

	s.stubSource()
	admin := s.adminToken()

	w = s.do(http.MethodPost, "/api/admin/import", nil, admin)
	s.check.Status(w, http.StatusOK)
	var result inbound.ImportResult
	testutils.DecodeInto(s.T(), w, &result)
	s.True(result.Success)
	s.Equal(1, result.RecipesImported)
	s.Equal(3, result.IngredientsImported)

	w = s.do(http.MethodPost, "/api/admin/import", nil, admin)
	s.check.Status(w, http.StatusOK)
	result = inbound.ImportResult{}
	testutils.DecodeInto(s.T(), w, &result)
	s.False(result.Success)
	s.Contains(result.Message, "force=true")

	w = s.do(http.MethodPost, "/api/admin/import?force=true", nil, admin)
	s.check.Status(w, http.StatusOK)
	result = inbound.ImportResult{}
	testutils.DecodeInto(s.T(), w, &result)
	s.True(result.Success)
	s.Equal(int64(1), result.RecipesRemoved)
	s.Equal(1, result.RecipesImported)

	w = s.do(http.MethodGet, "/api/recipes/public?query=stew", nil, "")
	s.check.Status(w, http.StatusOK)
	var public inbound.RecipeList
	testutils.DecodeInto(s.T(), w, &public)
	s.Equal(1, public.Total)

	w = s.do(http.MethodPost, "/api/admin/import?force=maybe", nil, admin)
	s.check.ErrorCode(w, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *APISuite) TestCrossCuttingBehaviour() {
	w := s.do(http.MethodGet, "/api/nowhere", nil, "")
	s.check.ErrorCode(w, http.StatusNotFound, "NOT_FOUND")
	s.check.SecurityHeaders(w)
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	req := testutils.JSONRequest(s.T(), http.MethodGet, "/health", nil, "")
	req.Header.Set("X-Request-ID", "req-123")
	w = testutils.Serve(s.handler, req)
	s.check.Status(w, http.StatusOK)
	s.Equal("req-123", w.Header().Get("X-Request-ID"))
	s.Equal("healthy", testutils.DecodeJSON(s.T(), w)["status"])

	w = s.do(http.MethodGet, "/health/ready", nil, "")
	s.check.Status(w, http.StatusOK)

	s.do(http.MethodGet, "/api/recipes/public", nil, "")
	w = s.do(http.MethodGet, "/metrics", nil, "")
	s.check.Status(w, http.StatusOK)
	s.Contains(w.Body.String(), "recipemanager_http_requests_total")
}

func (s *APISuite) TestResponsesAreCompressed() {
	token, _ := s.register()
	for i := 0; i < 10; i++ {
		s.createRecipe(token, 2)
	}

	req := testutils.JSONRequest(s.T(), http.MethodGet, "/api/recipes/public", nil, "")
	req.Header.Set("Accept-Encoding", "gzip")
	w := testutils.Serve(s.handler, req)

	s.check.Status(w, http.StatusOK)
	s.Equal("gzip", w.Header().Get("Content-Encoding"))
	s.Contains(w.Header().Values("Vary"), "Accept-Encoding")
}
