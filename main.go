package main

import (
	"os"

	"github.com/bandesk/bandesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
