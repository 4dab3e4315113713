/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/alzy/commerce-api/cmd"

func main() {
	cmd.Execute()
}
