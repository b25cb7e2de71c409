// Command hvmlrun is the harness that drives one coroutine over an
// already-tokenized VDOM tree and prints the resulting document. It exists
// to exercise the interpreter end to end and demonstrate the config/
// logging wiring; the HVML tokenizer itself is out of scope (spec §1), so
// hvmlrun reads its program as vdom.LoadJSON's JSON tree form rather than
// HVML source markup.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
