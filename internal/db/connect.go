package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Params identifies the MySQL-compatible server and, optionally, the
// Kontent database on it. An empty Database connects at server level.
type Params struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// DSN renders the go-sql-driver connection string for p.
func (p Params) DSN() string {
	cred := p.User
	if p.Password != "" {
		cred += ":" + p.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, p.Host, p.Port, p.Database)
}

// Connect opens a GORM connection to the Kontent database.
func Connect(p Params) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(p.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", p.Host, p.Port, p.Database, err)
	}
	return db, nil
}

// ConnectAdmin opens a GORM connection without selecting a database,
// used for CREATE DATABASE operations.
func ConnectAdmin(p Params) (*gorm.DB, error) {
	p.Database = ""
	db, err := gorm.Open(mysql.Open(p.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: admin connect to %s:%d: %w", p.Host, p.Port, err)
	}
	return db, nil
}

// DropDatabase drops the named database if it exists.
func DropDatabase(adminDB *gorm.DB, name string) error {
	sql := fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)
	if err := adminDB.Exec(sql).Error; err != nil {
		return fmt.Errorf("db: drop database %s: %w", name, err)
	}
	return nil
}

// CreateDatabase creates the named database if it doesn't already exist.
func CreateDatabase(adminDB *gorm.DB, name string) error {
	sql := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)
	if err := adminDB.Exec(sql).Error; err != nil {
		return fmt.Errorf("db: create database %s: %w", name, err)
	}
	return nil
}
