package main

import (
	"fmt"
	"os"

	"github.com/GESkunkworks/lodestone"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/inconshreveable/log15"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := lodestone.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %s\n", err.Error())
		return 1
	}

	logger := log15.New()
	lvl, err := log15.LvlFromString(cfg.LogLevel)
	if err != nil {
		lvl = log15.LvlInfo
	}
	logger.SetHandler(
		log15.LvlFilterHandler(
			lvl,
			log15.StreamHandler(os.Stdout, log15.LogfmtFormat()),
		),
	)

	opts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if cfg.Region != "" {
		opts.Config = aws.Config{Region: aws.String(cfg.Region)}
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating AWS session: %s\n", err.Error())
		return 1
	}
	if sess.Config.Region == nil || *sess.Config.Region == "" {
		fmt.Fprintln(os.Stderr, "error: could not resolve an AWS region; "+
			"set AWS_REGION or configure a default region")
		return 1
	}
	logger.Info("starting Aurora cost survey", "region", *sess.Config.Region)

	svyInput := lodestone.SurveyInput{
		Session:       sess,
		Logger:        &logger,
		Engines:       cfg.Engines,
		OutfilePrefix: &cfg.OutfilePrefix,
		WriteIORate:   &cfg.WriteIORate,
		StorageRate:   &cfg.StorageGBMonthRate,
	}
	svy, err := lodestone.New(&svyInput)
	if err != nil {
		logger.Error("error creating survey", "error", err.Error())
		return 1
	}
	if err = svy.Start(); err != nil {
		logger.Error("survey failed", "error", err.Error())
		return 1
	}
	if err = svy.ExportProspects(); err != nil {
		logger.Error("error writing report", "error", err.Error())
		return 1
	}
	if err = svy.ExportSummary(); err != nil {
		logger.Error("error writing summary", "error", err.Error())
		return 1
	}
	for _, line := range svy.GetSummary() {
		fmt.Println(line)
	}
	return 0
}
