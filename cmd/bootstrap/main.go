// Package main is the entry point for the distopia bootstrap launcher.
package main

func main() {
	Execute()
}
