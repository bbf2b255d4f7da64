package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/grabgarden/admin-api/internal/authz"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/provider"
	"github.com/grabgarden/admin-api/internal/repository"
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func setupAdminHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{Promo: config.PromoConfig{Timezone: "UTC", RedeemMaxRetries: 3}}
	c := &provider.Container{
		Config:             cfg,
		AdminRepo:          repository.NewAdminRepository(db),
		ProductRepo:        repository.NewProductRepository(db),
		PromoCodeRepo:      repository.NewPromoCodeRepository(db),
		PromoCodeUsageRepo: repository.NewPromoCodeUsageRepository(db),
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("init authz failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	c.AuthzService = authzService
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.PromoCodeAdminService = service.NewPromoCodeAdminService(cfg.Promo, c.PromoCodeRepo, c.PromoCodeUsageRepo, c.ProductRepo, nil)
	return New(c), db
}

func newAdminTestRouter(h *Handler, isSuper bool) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("admin_id", uint(1))
		c.Set("admin_is_super", isSuper)
		c.Next()
	})
	r.GET("/promo-codes", h.ListPromoCodes)
	r.POST("/promo-codes", h.CreatePromoCode)
	r.GET("/promo-codes/:id", h.GetPromoCode)
	r.PUT("/promo-codes/:id", h.UpdatePromoCode)
	r.DELETE("/promo-codes/:id", h.DeletePromoCode)
	r.PATCH("/promo-codes/:id/status", h.SetPromoCodeStatus)
	r.POST("/promo-codes/:id/simulate", h.SimulatePromoCode)
	r.GET("/promo-codes/:id/usages", h.ListPromoCodeUsages)
	r.GET("/products", h.ListProducts)
	r.GET("/authz/me", h.GetAuthzMe)
	r.GET("/authz/roles", h.ListAuthzRoles)
	r.PUT("/authz/admins/:id/roles", h.SetAdminRoles)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func futureExpiry() string {
	return time.Now().UTC().AddDate(0, 2, 0).Format("2006-01-02")
}

func createProduct(t *testing.T, db *gorm.DB, slug, price string) models.Product {
	t.Helper()
	product := models.Product{
		Slug:        slug,
		Name:        slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestPromoCodeHandlersLifecycle(t *testing.T) {
	h, _ := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h, true)

	expiry := futureExpiry()
	resp := doJSON(t, r, http.MethodPost, "/promo-codes", gin.H{
		"code":        " spring10 ",
		"mode":        "flat",
		"value":       "10",
		"expiry_date": expiry,
		"max_uses":    5,
	})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("create want status_code 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var created PromoCodeResponse
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode created failed: %v", err)
	}
	if created.Code != "SPRING10" || created.Mode != "FLAT" || created.ExpiryDate != expiry {
		t.Fatalf("unexpected created promo code: %+v", created)
	}
	if created.RemainingUses == nil || *created.RemainingUses != 5 {
		t.Fatalf("remaining uses want 5 got %v", created.RemainingUses)
	}

	dup := doJSON(t, r, http.MethodPost, "/promo-codes", gin.H{
		"code": "SPRING10", "mode": "FLAT", "value": "5", "expiry_date": expiry,
	})
	if dup.StatusCode != response.CodeConflict {
		t.Fatalf("duplicate want %d got %d", response.CodeConflict, dup.StatusCode)
	}

	path := fmt.Sprintf("/promo-codes/%d", created.ID)
	if got := doJSON(t, r, http.MethodGet, path, nil); got.StatusCode != response.CodeOK {
		t.Fatalf("get want 0 got %d", got.StatusCode)
	}

	status := doJSON(t, r, http.MethodPatch, path+"/status", gin.H{"is_active": false})
	if status.StatusCode != response.CodeOK {
		t.Fatalf("status want 0 got %d msg=%s", status.StatusCode, status.Msg)
	}
	list := doJSON(t, r, http.MethodGet, "/promo-codes?is_active=false", nil)
	if list.StatusCode != response.CodeOK || list.Pagination.Total != 1 {
		t.Fatalf("inactive list want total 1 got status=%d total=%d", list.StatusCode, list.Pagination.Total)
	}
	if bad := doJSON(t, r, http.MethodGet, "/promo-codes?is_active=maybe", nil); bad.StatusCode != response.CodeBadRequest {
		t.Fatalf("bad filter want 400 got %d", bad.StatusCode)
	}

	if got := doJSON(t, r, http.MethodDelete, path, nil); got.StatusCode != response.CodeOK {
		t.Fatalf("delete want 0 got %d", got.StatusCode)
	}
	missing := doJSON(t, r, http.MethodGet, path, nil)
	if missing.StatusCode != response.CodeNotFound || missing.Msg != "Promo code not found" {
		t.Fatalf("deleted code want 404 got %d msg=%s", missing.StatusCode, missing.Msg)
	}
}

func TestCreatePromoCodeRejectsInvalidInput(t *testing.T) {
	h, _ := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h, true)
	expiry := futureExpiry()

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{name: "missing fields", body: gin.H{"code": "X1"}, want: response.CodeBadRequest},
		{name: "bad code", body: gin.H{"code": "no spaces!", "mode": "FLAT", "value": "1", "expiry_date": expiry}, want: response.CodeBadRequest},
		{name: "bad mode", body: gin.H{"code": "MODEX", "mode": "BOGO", "value": "1", "expiry_date": expiry}, want: response.CodeBadRequest},
		{name: "bad expiry", body: gin.H{"code": "EXPX", "mode": "FLAT", "value": "1", "expiry_date": "31/12/2026"}, want: response.CodeBadRequest},
		{name: "flat without value", body: gin.H{"code": "NOVAL", "mode": "FLAT", "expiry_date": expiry}, want: response.CodeUnprocessable},
		{name: "unknown bundle product", body: gin.H{"code": "BNDLX", "mode": "BUNDLE", "bundle_min_items": 2, "bundle_price": "10", "eligible_product_ids": []uint{404}, "expiry_date": expiry}, want: response.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, r, http.MethodPost, "/promo-codes", tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("want %d got %d msg=%s", tc.want, resp.StatusCode, resp.Msg)
			}
		})
	}
}

func TestSimulatePromoCodeHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h, true)
	p1 := createProduct(t, db, "plant-a", "200")
	p2 := createProduct(t, db, "plant-b", "220")
	p3 := createProduct(t, db, "plant-c", "250")

	resp := doJSON(t, r, http.MethodPost, "/promo-codes", gin.H{
		"code":                 "TRIO500",
		"mode":                 "BUNDLE",
		"bundle_min_items":     3,
		"bundle_price":         "500",
		"eligible_product_ids": []uint{p1.ID, p2.ID, p3.ID},
		"expiry_date":          futureExpiry(),
	})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("create bundle want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var created PromoCodeResponse
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode created failed: %v", err)
	}

	path := fmt.Sprintf("/promo-codes/%d/simulate", created.ID)
	sim := doJSON(t, r, http.MethodPost, path, gin.H{
		"items": []gin.H{
			{"product_id": p1.ID, "quantity": 2, "unit_price": "200"},
			{"product_id": p2.ID, "quantity": 2, "unit_price": "220"},
			{"product_id": p3.ID, "quantity": 2, "unit_price": "250"},
		},
	})
	if sim.StatusCode != response.CodeOK {
		t.Fatalf("simulate want 0 got %d msg=%s", sim.StatusCode, sim.Msg)
	}
	var evaluation service.PromoEvaluation
	if err := json.Unmarshal(sim.Data, &evaluation); err != nil {
		t.Fatalf("decode evaluation failed: %v", err)
	}
	if !evaluation.Result.Applied || evaluation.Result.DiscountAmount.StringFixed(2) != "340.00" || evaluation.Result.BundleCount != 2 {
		t.Fatalf("unexpected simulate result: %+v", evaluation.Result)
	}

	notMet := doJSON(t, r, http.MethodPost, path, gin.H{
		"items": []gin.H{{"product_id": p1.ID, "quantity": 2, "unit_price": "200"}},
	})
	if notMet.StatusCode != response.CodeOK || notMet.Msg != "Not enough bundle items in cart" {
		t.Fatalf("bundle not met want localized reason got %d msg=%s", notMet.StatusCode, notMet.Msg)
	}

	invalidCart := doJSON(t, r, http.MethodPost, path, gin.H{
		"items": []gin.H{{"product_id": p1.ID, "quantity": 0, "unit_price": "200"}},
	})
	if invalidCart.StatusCode != response.CodeBadRequest {
		t.Fatalf("invalid cart want 400 got %d", invalidCart.StatusCode)
	}

	badAt := doJSON(t, r, http.MethodPost, path, gin.H{"items": []gin.H{}, "at": "tomorrow"})
	if badAt.StatusCode != response.CodeBadRequest {
		t.Fatalf("bad at want 400 got %d", badAt.StatusCode)
	}

	usages := doJSON(t, r, http.MethodGet, fmt.Sprintf("/promo-codes/%d/usages", created.ID), nil)
	if usages.StatusCode != response.CodeOK || usages.Pagination.Total != 0 {
		t.Fatalf("usages want empty list got status=%d total=%d", usages.StatusCode, usages.Pagination.Total)
	}
}

func TestListProductsHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h, true)
	createProduct(t, db, "fern", "12")
	hidden := createProduct(t, db, "cactus", "8")
	if err := db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	resp := doJSON(t, r, http.MethodGet, "/products", nil)
	if resp.StatusCode != response.CodeOK || resp.Pagination.Total != 1 {
		t.Fatalf("products want 1 active got status=%d total=%d", resp.StatusCode, resp.Pagination.Total)
	}
}

func TestSetAdminRolesHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h, true)

	target := models.Admin{Username: "marketing", PasswordHash: "x"}
	if err := db.Create(&target).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	path := fmt.Sprintf("/authz/admins/%d/roles", target.ID)

	resp := doJSON(t, r, http.MethodPut, path, gin.H{"roles": []string{"promo_manager"}})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("set roles want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var data struct {
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode roles failed: %v", err)
	}
	if len(data.Roles) != 1 || data.Roles[0] != "role:promo_manager" {
		t.Fatalf("roles want [role:promo_manager] got %v", data.Roles)
	}

	allowed, err := h.AuthzService.EnforceAdmin(target.ID, "/api/v1/admin/promo-codes/7", http.MethodPut)
	if err != nil || !allowed {
		t.Fatalf("promo manager should update promo codes, allowed=%v err=%v", allowed, err)
	}

	if bad := doJSON(t, r, http.MethodPut, path, gin.H{"roles": []string{"ghost"}}); bad.StatusCode != response.CodeBadRequest {
		t.Fatalf("unknown role want 400 got %d", bad.StatusCode)
	}
	if missing := doJSON(t, r, http.MethodPut, "/authz/admins/999/roles", gin.H{"roles": []string{}}); missing.StatusCode != response.CodeNotFound {
		t.Fatalf("missing admin want 404 got %d", missing.StatusCode)
	}

	roles := doJSON(t, r, http.MethodGet, "/authz/roles", nil)
	var items []AuthzRoleItem
	if err := json.Unmarshal(roles.Data, &items); err != nil {
		t.Fatalf("decode role list failed: %v", err)
	}
	if len(items) < 2 {
		t.Fatalf("builtin roles should be listed, got %+v", items)
	}
}
