/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/longkey1/agentchat/cmd"

func main() {
	cmd.Execute()
}
