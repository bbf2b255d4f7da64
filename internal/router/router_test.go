package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBuildAdminPermissionCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	noop := func(c *gin.Context) {}

	r := gin.New()
	r.POST("/api/v1/admin/login", noop)
	r.POST("/api/v1/admin/logout", noop)
	r.GET("/api/v1/admin/captcha/image", noop)
	r.GET("/api/v1/admin/promo-codes", noop)
	r.POST("/api/v1/admin/promo-codes", noop)
	r.PATCH("/api/v1/admin/promo-codes/:id/status", noop)
	r.GET("/api/v1/admin/authz/roles", noop)
	r.POST("/api/v1/checkout/promo/redeem", noop)

	items := buildAdminPermissionCatalog(r)
	if len(items) != 4 {
		t.Fatalf("catalog size want 4 got %d: %+v", len(items), items)
	}
	if items[0].Module != "authz" || items[0].Permission != "GET:/admin/authz/roles" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	for _, item := range items {
		if item.Object == "/admin/login" || item.Object == "/admin/logout" || item.Object == "/admin/captcha/image" {
			t.Fatalf("public admin routes should be excluded: %+v", item)
		}
		if item.Module != "authz" && item.Module != "promo-codes" {
			t.Fatalf("unexpected module %s", item.Module)
		}
	}
	if items[1].Method != http.MethodGet || items[1].Object != "/admin/promo-codes" {
		t.Fatalf("promo codes should be sorted by object then method, got %+v", items[1])
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"":                        "system",
		"/admin":                  "admin",
		"/admin/promo-codes/:id":  "promo-codes",
		"/admin/authz/admins/:id": "authz",
		"/checkout/promo/preview": "checkout",
	}
	for object, want := range cases {
		if got := deriveAdminPermissionModule(object); got != want {
			t.Fatalf("object=%s want %s got %s", object, want, got)
		}
	}
}
