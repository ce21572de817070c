package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/keylight/pkg/framework"
	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/l0/serial"
	env "github.com/robotalks/keylight/pkg/l1/env/controller"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.Default()
	layout := conf.MustLoadLayout()

	port, err := serial.Open(conf.SerialConfig())
	if err != nil {
		log.Fatalln(err)
	}
	defer port.Close()

	gpio, err := hal.OpenChip(layout)
	if err != nil {
		log.Fatalln(err)
	}
	defer gpio.Close()

	link := port.NewLink(nil)
	e := conf.MustNewEnv(env.Hardware{Layout: layout, GPIO: gpio, Timer: &hal.TickerTimer{}}, link)
	link.Handler = e.Dispatcher

	runner := fx.NewRunner().HandleSignals()
	if err := e.Run(runner.Context); err != nil {
		glog.Errorf("keylightd: %v", err)
	}
}
