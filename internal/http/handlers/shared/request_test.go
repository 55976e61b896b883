package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestPageQuery(t *testing.T) {
	cases := []struct {
		target         string
		page, pageSize int
	}{
		{target: "/", page: 1, pageSize: 20},
		{target: "/?page=3&page_size=50", page: 3, pageSize: 50},
		{target: "/?page=-1&page_size=500", page: 1, pageSize: 100},
		{target: "/?page=abc&page_size=0", page: 1, pageSize: 20},
	}
	for _, tc := range cases {
		page, pageSize := PageQuery(newTestContext(tc.target))
		if page != tc.page || pageSize != tc.pageSize {
			t.Fatalf("%s want=%d/%d got=%d/%d", tc.target, tc.page, tc.pageSize, page, pageSize)
		}
	}
}

func TestAdminID(t *testing.T) {
	c := newTestContext("/")
	if _, ok := AdminID(c); ok {
		t.Fatalf("missing admin id should fail")
	}

	c = newTestContext("/")
	c.Set("admin_id", float64(7))
	if id, ok := AdminID(c); !ok || id != 7 {
		t.Fatalf("expected id 7, got %d %v", id, ok)
	}

	c = newTestContext("/")
	c.Set("admin_id", -3)
	if _, ok := AdminID(c); ok {
		t.Fatalf("negative admin id should fail")
	}

	c = newTestContext("/")
	c.Set("admin_id", "7")
	if _, ok := AdminID(c); ok {
		t.Fatalf("string admin id should fail")
	}
}
