package main

import (
	"context"
	"log"
	"os"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/storage/database"
	"github.com/campusvoice/backend/storage/database/mongo"
)

func main() {
	conf := core.NewConfig()

	client, db, err := database.Open(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	cli := &commandLine{usrRepo: mongodb.NewUserRepository(db)}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Fatal(err)
		}
		os.Exit(2)
	}
}
