package main

import (
	"os"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	rootCmd := NewRootCmd(func(configFile, envFile string) (AppProvider, error) {
		app, err := NewApp(configFile, envFile)
		if err != nil {
			return nil, err
		}
		return app, nil
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
