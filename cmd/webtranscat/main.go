package main

import "os"

func main() {
	opts, err := ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	os.Exit(run(opts))
}
