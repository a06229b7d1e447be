// Package main is the entry point for the SutraQuery server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/ISHANT57/Gita-Chatbot/cmd/sutraquery/app"
)

func main() {
	app.NewApp().Run()
}
