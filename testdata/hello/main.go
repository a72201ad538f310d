// Command hello is a tiny interactive program used to exercise the harness
// against a separately compiled binary.
package main

import (
	"bufio"
	"fmt"
	"os"
)

func main() {
	fmt.Print("Enter name: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		os.Exit(1)
	}
	fmt.Println("Hello " + sc.Text())
}
