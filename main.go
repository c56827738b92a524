package main

import (
	"os"

	"github.com/Cooliber/Fulmark20CRM-sub003/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
