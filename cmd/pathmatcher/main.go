package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mr "github.com/Leopold1975/familysite/internal/familysite/repository/mediarepo/postgres"
	"github.com/Leopold1975/familysite/internal/pathmatcher"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatal(err)
	}

	interruptSignals := []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

	ctx, cancel := signal.NotifyContext(context.Background(), interruptSignals...)
	defer cancel()

	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg.PostgresDB))
	if err != nil {
		log.Println(err)

		return
	}
	defer db.Close()

	p := tea.NewProgram(pathmatcher.New(ctx, mr.New(db)), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Println(err)
	}
}
