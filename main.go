package main

import "github.com/ValentinKolb/tgis/cmd"

func main() {
	cmd.Execute()
}
