package main

import (
	"log"

	"whitelotus/cmd"
	_ "whitelotus/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
