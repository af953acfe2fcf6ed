package serverconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_缺省字段补齐(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yml")
	raw := "sim:\n  map_id: m1\n  tick_interval: 500ms\nwave:\n  total_count: 3\njwt_secret: s3\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("load err=%v", err)
	}
	if Conf.Sim.MapID != "m1" || Conf.Sim.TickInterval != 500*time.Millisecond {
		t.Fatalf("sim got=%+v", Conf.Sim)
	}
	if Conf.Wave.TotalCount != 3 || Conf.Wave.SpawnDelay != 3*time.Second {
		t.Fatalf("wave got=%+v", Conf.Wave)
	}
	if Conf.Store.Driver != "memory" || Conf.Sim.Width != 20 {
		t.Fatalf("缺省值未补齐: %+v", Conf)
	}
	if os.Getenv("JWT_SECRET") != "s3" {
		t.Fatalf("期望回填 JWT_SECRET")
	}
}

func TestRedacted_遮掉密钥(t *testing.T) {
	c := Default()
	c.JWTSecret = "jwt-s3"
	c.Crowdfunding.SeedSecret = "seed-s3"
	c.MySQL.Password = "pw"
	c.MongoDB.URI = "mongodb://admin:pw@127.0.0.1:27017/?authSource=admin"

	r := c.Redacted()
	if r.JWTSecret != "***" || r.Crowdfunding.SeedSecret != "***" || r.MySQL.Password != "***" {
		t.Fatalf("redacted=%+v", r)
	}
	if strings.Contains(r.MongoDB.URI, "pw") || !strings.Contains(r.MongoDB.URI, "127.0.0.1:27017") {
		t.Fatalf("mongo uri=%s", r.MongoDB.URI)
	}
	if c.JWTSecret != "jwt-s3" || c.Crowdfunding.SeedSecret != "seed-s3" {
		t.Fatalf("原配置不应被改动")
	}
	if got := Default().Redacted(); got.JWTSecret != "" || got.Crowdfunding.SeedSecret != "" {
		t.Fatalf("空密钥保持为空 got=%+v", got)
	}
}
