package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brawlers/missionboard/internal/database"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
	"github.com/brawlers/missionboard/pkg/log"
)

func readPassword() (string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("password: ")
	p1, _ := reader.ReadString('\n')
	fmt.Print("repeat password: ")
	p2, _ := reader.ReadString('\n')

	if p1 != p2 {
		return "", fmt.Errorf("password mismatch")
	}

	return strings.TrimRight(p1, "\r\n"), nil
}

func list(ctx context.Context, r *repository.BrawlerDbRepository) error {
	brawlers, err := r.List(ctx)
	if err != nil {
		return err
	}

	for _, b := range brawlers {
		fmt.Printf("%d\t%s\t%s\t%s\n", b.ID, b.Username, b.DisplayName, b.CreatedAt.Format("2006-01-02"))
	}

	return nil
}

func importFile(ctx context.Context, r *repository.BrawlerDbRepository, fn string) error {
	brawlers, err := repository.ReadBrawlersFile(fn)
	if err != nil {
		return err
	}

	for _, b := range brawlers {
		if err := r.Create(ctx, b); err != nil {
			fmt.Printf("%s: %s\n", b.Username, err.Error())
			continue
		}

		fmt.Printf("%s: created with id %d\n", b.Username, b.ID)
	}

	return nil
}

func setUser(ctx context.Context, dbm *database.DatabaseManager, r *repository.BrawlerDbRepository, username, pass, name string) error {
	b, err := r.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if b == nil {
		b = &model.Brawler{Username: username, DisplayName: name}

		if b.DisplayName == "" {
			b.DisplayName = model.NormalizeUsername(username)
		}

		if err := b.SetPassword(pass); err != nil {
			return err
		}

		if err := r.Create(ctx, b); err != nil {
			return err
		}

		fmt.Printf("%s: created with id %d\n", b.Username, b.ID)

		return nil
	}

	if err := b.SetPassword(pass); err != nil {
		return err
	}

	upd := map[string]any{"password": b.Password}

	if name != "" {
		upd["display_name"] = name
	}

	if err := dbm.BrawlerQuery().Id(b.ID).Update(upd); err != nil {
		return err
	}

	fmt.Printf("%s: updated\n", b.Username)

	return nil
}

func main() {
	dsn := flag.String("db", "missionboard.sqlite", "database")
	file := flag.String("file", "", "yaml file to import")
	user := flag.String("user", "", "user")
	passwd := flag.String("password", "", "password")
	name := flag.String("name", "", "display name")
	debug := flag.Bool("debug", false, "debug")

	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(log.NewHandler(&slog.HandlerOptions{Level: level})))

	if err := run(*dsn, *file, *user, *passwd, *name, *debug); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run(dsn, file, user, passwd, name string, debug bool) error {
	ctx := context.Background()

	db, err := database.GetDatabase(dsn, debug)
	if err != nil {
		return err
	}

	dbm := database.New(db)

	if err := dbm.Migrate(); err != nil {
		return err
	}

	r := repository.NewBrawlerDbRepository("", dbm)

	switch {
	case file != "":
		return importFile(ctx, r, file)
	case user == "":
		return list(ctx, r)
	}

	if passwd == "" {
		if passwd, err = readPassword(); err != nil {
			return err
		}
	}

	return setUser(ctx, dbm, r, user, passwd, name)
}
