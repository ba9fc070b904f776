// Package main: Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB havuzunu paylaşır ve interface döner.
package main

import (
	"database/sql"

	"github.com/cameronthecoder/django-ban/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
type Repositories struct {
	User    repository.UserRepository
	Session repository.SessionRepository
	Ban     repository.BanRepository
	Warn    repository.WarnRepository
}

func initRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:    repository.NewSQLiteUserRepo(db),
		Session: repository.NewSQLiteSessionRepo(db),
		Ban:     repository.NewSQLiteBanRepo(db),
		Warn:    repository.NewSQLiteWarnRepo(db),
	}
}
