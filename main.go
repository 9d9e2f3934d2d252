package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	cfg, err := LoadConfig(viper.New(), os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("%v\n", err)
	}
	logFile, err := InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Debug("config loaded", "configFile", cfg.ConfigFile, "preset", cfg.Preset, "input", cfg.Input)
	app := CreateApp(cfg)
	title := "waveviz"
	if cfg.Input != "" {
		title = fmt.Sprintf("waveviz : %s", cfg.Input)
	}
	opts := WindowOptions{
		Title:      title,
		Width:      1024,
		Height:     768,
		Fullscreen: cfg.Fullscreen,
		VSync:      cfg.VSync,
		FPS:        cfg.FPS,
	}
	if err := WithGL(opts, app); err != nil {
		logger.Error("exiting", "err", err)
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
}
