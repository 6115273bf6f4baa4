package db

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "default local",
			params: Params{User: "root", Host: "127.0.0.1", Port: 3306, Database: "kontent_acme"},
			want:   "root@tcp(127.0.0.1:3306)/kontent_acme?parseTime=true",
		},
		{
			name:   "custom host and port",
			params: Params{User: "root", Host: "10.0.0.5", Port: 3307, Database: "kontent_demo"},
			want:   "root@tcp(10.0.0.5:3307)/kontent_demo?parseTime=true",
		},
		{
			name:   "credentials",
			params: Params{User: "kontent", Password: "s3cret", Host: "db.internal", Port: 3306, Database: "kontent_acme"},
			want:   "kontent:s3cret@tcp(db.internal:3306)/kontent_acme?parseTime=true",
		},
		{
			name:   "server level without database",
			params: Params{User: "root", Host: "127.0.0.1", Port: 3306},
			want:   "root@tcp(127.0.0.1:3306)/?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.params.DSN()
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN_ParseTimeFlag(t *testing.T) {
	dsn := Params{User: "root", Host: "localhost", Port: 3306, Database: "test"}.DSN()
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN missing parseTime=true: %s", dsn)
	}
}

func TestAutoMigrate(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate() error: %v", err)
	}
	if !gdb.Migrator().HasTable("items") {
		t.Error("items table missing after migrate")
	}
}

func TestConnect_Signature(t *testing.T) {
	// Connect requires a running MySQL-compatible server; verify the
	// function shape here and cover behavior against the test driver.
	var fn func(Params) (*gorm.DB, error) = Connect
	if fn == nil {
		t.Fatal("Connect function is nil")
	}
}
