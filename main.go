package main

import "github.com/StinkyLord/ort-html-report/cmd"

func main() {
	cmd.Execute()
}
