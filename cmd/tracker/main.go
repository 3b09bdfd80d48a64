package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/brightsms/momotracker/cmd/tracker/internal/router"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

var app struct {
	debug  bool
	config string
}

func init() {
	flagset := flag.NewFlagSet("tracker", flag.ExitOnError)
	flagset.BoolVar(&app.debug, "debug", false, "set debug mode")
	flagset.StringVar(&app.config, "config", "config.yaml", "YAML configuration")
	err := flagset.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	if app.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	configContents, err := os.ReadFile(app.config)
	if err != nil {
		log.Fatal(err)
	}

	var cfg Config
	err = yaml.Unmarshal(configContents, &cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctrl, db, err := cfg.Compile()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	defer ctrl.Close()

	// Pick up transactions left mid-flight by the previous run
	resumed, err := ctrl.Resume()
	if err != nil {
		log.Fatal(err)
	}
	log.Println("INFO|RESUMED|TRANSACTIONS", resumed)

	reportInterval := cfg.ReportInterval
	if reportInterval <= 0 {
		reportInterval = time.Minute
	}

	e := gin.Default()
	var r = router.Router{
		ReportInterval: reportInterval,
		Tracker:        ctrl,
		Base:           e,
	}
	r.Register()

	err = e.Run(cfg.ListenAddress)
	if err != nil {
		log.Fatal(err)
	}
}
