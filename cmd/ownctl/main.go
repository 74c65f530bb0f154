// Command ownctl builds, dumps, stress-tests and benchmarks ownership trees.
package main

func main() {
	execute()
}
