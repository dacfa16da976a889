package main

import (
	cmd "github.com/kerbaras/komik/cmd/komik"
)

func main() {
	cmd.Execute()
}
