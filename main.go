package main

import (
	_ "github.com/joho/godotenv/autoload"

	"discover-server/cmd"
)

func main() {
	cmd.Execute()
}
