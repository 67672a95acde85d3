package main

import "github.com/Znerual/KakuroGenerator/cmd"

func main() {
	cmd.Execute()
}
