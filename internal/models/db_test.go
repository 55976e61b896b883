package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB(DBOptions{Driver: "mysql", DSN: "irrelevant"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestInitDefaultAdminCreatesOnce(t *testing.T) {
	previous := DB
	t.Cleanup(func() { DB = previous })

	dsn := fmt.Sprintf("file:models_admin_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := InitDB(DBOptions{Driver: "sqlite", DSN: dsn, Pool: DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}}); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := DB.AutoMigrate(&Admin{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	admin, err := InitDefaultAdmin("  gestor ", "s3nha-forte", "gestor@example.com")
	if err != nil || admin == nil {
		t.Fatalf("expected admin to be created, got %v %v", admin, err)
	}
	if admin.Username != "gestor" || !admin.IsSuper {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3nha-forte")) != nil {
		t.Fatalf("password hash mismatch")
	}

	again, err := InitDefaultAdmin("outro", "", "")
	if err != nil || again != nil {
		t.Fatalf("second init should be a no-op, got %v %v", again, err)
	}
}

func TestMoneyJSONRoundsToCents(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"10.005"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "10.01" {
		t.Fatalf("expected 10.01, got %s", m.String())
	}
	if err := json.Unmarshal([]byte(`3.3`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	out, _ := json.Marshal(m)
	if string(out) != `"3.30"` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestMoneyRejectsGarbage(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non numeric amount")
	}
	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatalf("null should be ignored, got %v", err)
	}
}

func TestJSONColumnScanAcceptsTextAndBytes(t *testing.T) {
	var fromText JSON
	if err := fromText.Scan(`{"job_id":3}`); err != nil {
		t.Fatalf("scan text failed: %v", err)
	}
	var fromBytes JSON
	if err := fromBytes.Scan([]byte(`{"job_id":3}`)); err != nil {
		t.Fatalf("scan bytes failed: %v", err)
	}
	if fromText["job_id"] != float64(3) || fromBytes["job_id"] != float64(3) {
		t.Fatalf("unexpected scan result %v %v", fromText, fromBytes)
	}
	if err := fromText.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
}
