package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStateStore represents a state store that persists serialized
// consolidator state inside a MySQL database.
type MySQLStateStore struct {
	GORMStateStore
}

// NewMySQLStateStore returns a new instance of the MySQLStateStore.
func NewMySQLStateStore(cfg GORMStateStoreConfig) *MySQLStateStore {
	return &MySQLStateStore{GORMStateStore: GORMStateStore{Cfg: cfg}}
}

// Setup contains the storage preparations like connection etc. Is called only
// once at the very beginning of the work with the storage. As for the
// GORMStateStore, it tests the connection, creates the database if missing
// and runs the migrations.
func (s *GORMStateStore) Setup() error {
	db, err := gorm.Open(mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/?%s", s.Cfg.User, s.Cfg.Password, s.Cfg.Host, s.Cfg.Port, "parseTime=true")), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		return err
	}
	err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET = `utf8mb4` DEFAULT COLLATE = `utf8mb4_unicode_ci`;", s.Cfg.Database)).Error
	if err != nil {
		return err
	}
	mdb, err := db.DB()
	if err != nil {
		return err
	}
	mdb.Close()
	db, err = gorm.Open(mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", s.Cfg.User, s.Cfg.Password, s.Cfg.Host, s.Cfg.Port, s.Cfg.Database, "parseTime=true")), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		return err
	}
	db = db.Set("gorm:table_options", "CHARSET=utf8mb4 ENGINE=InnoDB COLLATE=utf8mb4_unicode_ci")
	if s.Cfg.Logger != nil {
		db = db.Session(&gorm.Session{Logger: s.Cfg.Logger})
	}
	s.client = db
	if err := s.client.AutoMigrate(&consolidatorState{}); err != nil {
		return err
	}
	if s.Cfg.CleanupOnStart {
		return s.cleanup()
	}
	return nil
}
