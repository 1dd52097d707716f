// Command smmctl creates, inspects and exercises arena region files.
package main

func main() {
	execute()
}
