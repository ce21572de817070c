package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/keylight/pkg/cli/sh"
	fx "github.com/robotalks/keylight/pkg/framework"
	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/l0/wslink"
	env "github.com/robotalks/keylight/pkg/l1/env/controller"
	"github.com/robotalks/keylight/pkg/sim"
	"github.com/robotalks/keylight/pkg/sim/window"

	_ "github.com/robotalks/keylight/pkg/cli/cmds/backlight"
)

func init() {
	env.SetupFlags()
	sim.SetupFlags()
	sh.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, simConf := env.Default(), sim.Default()
	layout := conf.MustLoadLayout()
	board := sim.NewBoard(layout, &hal.TickerTimer{}, uint16(conf.Limit), simConf.Window)

	link := &wslink.Server{Addr: simConf.Listen}
	e := conf.MustNewEnv(env.Hardware{Layout: layout, GPIO: board, Timer: board}, link)
	link.Handler = e.Dispatcher
	if err := e.Start(); err != nil {
		glog.Fatalf("start: %v", err)
	}
	defer e.Close()

	runner := fx.NewRunner().HandleSignals()
	runner.Go(e.Runnables()...)
	if simConf.Console {
		console := sh.New(e)
		console.Frame, console.Columns = board.Frame, len(layout.Columns)
		runner.Go(fx.NamedRun("console", fx.RunFunc(func(ctx context.Context) error {
			defer runner.Stop()
			return console.Run(ctx)
		})))
	}

	win := window.New(board, e, simConf.Scale)
	win.Title = func() string {
		return "keylight " + sh.FormatStatus(e.Status(), e.ProfileNames())
	}
	if err := win.Run(runner.Context); err != nil && err != context.Canceled {
		glog.Errorf("window: %v", err)
	}
	runner.Stop()
	if err := runner.Wait(); err != nil {
		glog.Errorf("keylight-sim: %v", err)
	}
}
