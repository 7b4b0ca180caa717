package main

import (
	"fmt"
	"os"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/services/logger"
	"github.com/trezcool/academy/storage/database"
	"github.com/trezcool/academy/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	local, err := logsvc.NewLocalLogger(conf)
	if err != nil {
		panic(fmt.Sprintf("setting up local logger: %v", err))
	}
	logger := logsvc.NewRollbarLogger(local.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	if conf.Database.URL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
