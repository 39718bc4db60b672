package main

import "github.com/yakey01/dokterku-sub009/cmd"

func main() {
	cmd.Execute()
}
