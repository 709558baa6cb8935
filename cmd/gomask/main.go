package main

import "github.com/dbsmedya/gomask/cmd/gomask/cmd"

func main() {
	cmd.Execute()
}
