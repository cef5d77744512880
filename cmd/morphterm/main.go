// Command morphterm plays a level package in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
	"github.com/pthm-cable/morph/level"
)

type viewer struct {
	screen tcell.Screen
	cfg    *config.Config
	game   *game.Game
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	pkgPath := flag.String("package", "", "Level package directory")
	logFile := flag.String("log-file", "", "Write logs to this file (empty = discard)")
	flag.Parse()

	if err := run(*configPath, *pkgPath, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, pkgPath, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := zap.NewNop()
	if logFile != "" {
		zc := zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{logFile}
		if log, err = zc.Build(); err != nil {
			return err
		}
	}
	defer log.Sync()

	var pkg *level.Package
	if pkgPath != "" {
		pkg, err = level.LoadDir(pkgPath)
	} else {
		var pkgs []*level.Package
		pkgs, err = level.LoadPackages(context.Background(), cfg.Level.PackagesDir)
		if err == nil && len(pkgs) == 0 {
			err = fmt.Errorf("no level packages in %s", cfg.Level.PackagesDir)
		}
		if err == nil {
			pkg = pkgs[0]
		}
	}
	if err != nil {
		return err
	}

	g, err := game.New(cfg, pkg, log, game.Options{})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := &viewer{screen: screen, cfg: cfg, game: g}
	return v.loop()
}

func (v *viewer) loop() error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			quit, err := v.handle(ev)
			if quit || err != nil {
				return err
			}
		case now := <-ticker.C:
			v.game.Update(now.Sub(last).Seconds())
			last = now
			v.draw()
		}
	}
}

// handle maps a terminal event to game events. It reports true on quit.
func (v *viewer) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyLeft:
			v.game.Write(game.MoveCamera(r2.Vec{X: -1}))
		case tcell.KeyRight:
			v.game.Write(game.MoveCamera(r2.Vec{X: 1}))
		case tcell.KeyUp:
			v.game.Write(game.MoveCamera(r2.Vec{Y: -1}))
		case tcell.KeyDown:
			v.game.Write(game.MoveCamera(r2.Vec{Y: 1}))
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false, nil
}

func (v *viewer) handleRune(r rune) (bool, error) {
	switch r {
	case 'q':
		return true, nil
	case ' ':
		v.game.Write(game.Start())
	case 'p':
		v.game.Write(game.Event{Kind: game.EventPause})
	case 'r':
		return false, v.game.Restart()
	case 'n':
		more, err := v.game.Next()
		return !more, err
	case '1', '2', '3', '4':
		v.game.Write(game.Morph(components.MorphStates[r-'1']))
	}
	return false, nil
}
